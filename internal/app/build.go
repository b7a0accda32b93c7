package app

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"horse.fit/langid/internal/builder"
	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/corpus"
	"horse.fit/langid/internal/logging"
	"horse.fit/langid/internal/profilestore"
)

func runBuild(args []string, s streams) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	overrides := addConfigOverrides(fs)
	corpusDir := fs.String("corpus-dir", "", "Corpus root with <language>/training_data.txt (overrides CORPUS_DIR)")
	parallel := fs.Int("parallel", 0, "Languages built concurrently (overrides BUILD_PARALLELISM)")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(s.stderr, "build does not accept positional arguments")
		return 2
	}
	if *parallel < 0 {
		fmt.Fprintln(s.stderr, "--parallel must be >= 0")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(s.stderr, "Invalid format: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(envLoader, overrides, s.stderr)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	if value := strings.TrimSpace(*corpusDir); value != "" {
		cfg.CorpusDir = value
	}
	if *parallel > 0 {
		cfg.BuildParallelism = *parallel
	}

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, s.stderr)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	store, closeStore, err := profilestore.Open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("store", cfg.ProfileStore).Msg("build failed to open profile store")
		fmt.Fprintf(s.stderr, "Failed to open profile store: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("close profile store failed")
		}
	}()

	b := builder.New(corpus.NewDirSource(cfg.CorpusDir), store, logger, builder.Options{
		Parallelism: cfg.BuildParallelism,
	})
	report := b.BuildProfiles(ctx, cfg.LanguageList())

	if outputFormat == outputFormatJSON {
		if err := printJSON(s.stdout, report); err != nil {
			fmt.Fprintf(s.stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
	} else {
		rows := make([][]string, 0, len(report.Outcomes))
		for _, outcome := range report.Outcomes {
			rows = append(rows, []string{
				outcome.Language,
				string(outcome.Status),
				strconv.Itoa(outcome.Sentences),
				strconv.Itoa(outcome.Trigrams),
				strconv.Itoa(outcome.Distinct),
				outcome.Reason,
			})
		}
		if err := writeTable(s.stdout, []string{"LANGUAGE", "STATUS", "SENTENCES", "TRIGRAMS", "DISTINCT", "REASON"}, rows); err != nil {
			fmt.Fprintf(s.stderr, "Failed to write table: %v\n", err)
			return 1
		}
	}

	if report.Count(builder.StatusFailed) > 0 {
		fmt.Fprintf(s.stderr, "%d language profile(s) failed to build\n", report.Count(builder.StatusFailed))
		return 1
	}
	if len(report.Built()) == 0 {
		fmt.Fprintln(s.stderr, "No language profiles were built")
		return 1
	}
	return 0
}
