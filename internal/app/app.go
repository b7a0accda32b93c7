package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	return run(args, streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
}

func run(args []string, s streams) int {
	if len(args) == 0 {
		printUsage(s.stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage(s.stderr)
		return 0
	case "build":
		return runBuild(args[1:], s)
	case "detect":
		return runDetect(args[1:], s)
	case "profiles":
		return runProfiles(args[1:], s)
	case "migrate":
		return runMigrate(args[1:], s)
	case "serve":
		return runServe(args[1:], s)
	case "hash-token":
		return runHashToken(args[1:], s)
	default:
		fmt.Fprintf(s.stderr, "unknown command: %s\n\n", args[0])
		printUsage(s.stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "langid CLI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  langid <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build     Build trigram profiles from the training corpora")
	fmt.Fprintln(w, "  detect    Detect the language of --text, --file or stdin")
	fmt.Fprintln(w, "  profiles  Show which language profiles load from the store")
	fmt.Fprintln(w, "  migrate   Copy profile files into the Postgres store")
	fmt.Fprintln(w, "  serve     Start Echo API server")
	fmt.Fprintln(w, "  hash-token  Print the ADMIN_TOKEN_HASH for a reload token")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Use \"langid <command> -h\" for command-specific flags.")
}
