package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/langdetect"
	"horse.fit/langid/internal/logging"
	"horse.fit/langid/internal/profilestore"
	"horse.fit/langid/internal/reader"
)

type detectOutput struct {
	Language   string           `json:"language"`
	Confidence int              `json:"confidence"`
	Method     string           `json:"method"`
	WordCount  int              `json:"wordCount"`
	Scores     []detector.Score `json:"scores,omitempty"`
}

func runDetect(args []string, s streams) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	overrides := addConfigOverrides(fs)
	text := fs.String("text", "", "Text to classify")
	file := fs.String("file", "", "Path to a .txt or .html file to classify")
	method := fs.String("method", detector.Method, "Detection method: ngram or lingua")
	all := fs.Bool("all", false, "Include the similarity of every loaded language")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(s.stderr, "detect does not accept positional arguments; use --text")
		return 2
	}
	if strings.TrimSpace(*text) != "" && strings.TrimSpace(*file) != "" {
		fmt.Fprintln(s.stderr, "--text and --file are mutually exclusive")
		return 2
	}

	selectedMethod := strings.ToLower(strings.TrimSpace(*method))
	if selectedMethod != detector.Method && selectedMethod != langdetect.Method {
		fmt.Fprintf(s.stderr, "--method must be %s or %s\n", detector.Method, langdetect.Method)
		return 2
	}

	input, err := readDetectInput(*text, *file, s.stdin)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	if strings.TrimSpace(input) == "" {
		fmt.Fprintln(s.stderr, "No text provided")
		return 2
	}

	cfg, err := loadConfig(envLoader, overrides, s.stderr)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, s.stderr)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	output := detectOutput{WordCount: reader.CountWords(input)}

	if selectedMethod == langdetect.Method {
		l, err := langdetect.NewLingua(cfg.LanguageList())
		if err != nil {
			fmt.Fprintf(s.stderr, "Failed to configure lingua: %v\n", err)
			return 1
		}
		result := l.Detect(input)
		output.Language, output.Confidence, output.Method = result.Language, result.Confidence, result.Method
	} else {
		ctx, cancel := commandContext(*timeout)
		defer cancel()

		store, closeStore, err := profilestore.Open(ctx, cfg)
		if err != nil {
			fmt.Fprintf(s.stderr, "Failed to open profile store: %v\n", err)
			return 1
		}
		set, _ := detector.Load(ctx, store, cfg.LanguageList(), logger)
		if closeErr := closeStore(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("close profile store failed")
		}
		if set.Len() == 0 {
			logger.Warn().Str("store", cfg.ProfileStore).Msg("no language profiles loaded; run langid build first")
		}

		result, scores := detector.New(set).DetectWithScores(input)
		output.Language, output.Confidence, output.Method = result.Language, result.Confidence, result.Method
		if *all {
			output.Scores = scores
		}
	}

	if err := printJSON(s.stdout, output); err != nil {
		fmt.Fprintf(s.stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}

func readDetectInput(text, file string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if path := strings.TrimSpace(file); path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		extracted, err := reader.ExtractText(path, "", body)
		if err != nil {
			return "", fmt.Errorf("extract text from %s: %w", path, err)
		}
		return extracted, nil
	}

	if stdin == nil {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(stdin, reader.DefaultBodyByteLimit+1))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if int64(len(body)) > reader.DefaultBodyByteLimit {
		return "", fmt.Errorf("stdin input exceeds %d bytes", reader.DefaultBodyByteLimit)
	}
	return string(body), nil
}
