package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"strings"

	"horse.fit/langid/internal/auth"
)

func runHashToken(args []string, s streams) int {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	token := fs.String("token", "", "Admin token to hash (read from stdin when empty)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(s.stderr, "hash-token does not accept positional arguments")
		return 2
	}

	value := strings.TrimSpace(*token)
	if value == "" && s.stdin != nil {
		line, err := bufio.NewReader(s.stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(s.stderr, "--token is required")
			return 2
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		fmt.Fprintln(s.stderr, "--token is required")
		return 2
	}

	hash, err := auth.HashToken(value)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to hash token: %v\n", err)
		return 1
	}
	fmt.Fprintln(s.stdout, hash)
	return 0
}
