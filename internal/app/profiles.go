package app

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/logging"
	"horse.fit/langid/internal/profilestore"
)

type profilesOutput struct {
	Store    string                 `json:"store"`
	Loaded   int                    `json:"loaded"`
	Outcomes []detector.LoadOutcome `json:"outcomes"`
	// Unconfigured lists stored artifacts that LANGUAGES does not name.
	Unconfigured []string `json:"unconfigured,omitempty"`
}

func runProfiles(args []string, s streams) int {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	overrides := addConfigOverrides(fs)
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(s.stderr, "profiles does not accept positional arguments")
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

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, s.stderr)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	store, closeStore, err := profilestore.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to open profile store: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("close profile store failed")
		}
	}()

	languages := cfg.LanguageList()
	set, outcomes := detector.Load(ctx, store, languages, logger)
	output := profilesOutput{
		Store:    cfg.ProfileStore,
		Loaded:   set.Len(),
		Outcomes: outcomes,
	}

	stored, ok, err := profilestore.StoredLanguages(ctx, store)
	if err != nil {
		logger.Warn().Err(err).Msg("list stored profiles failed")
	} else if ok {
		output.Unconfigured = unconfiguredLanguages(stored, languages)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(s.stdout, output); err != nil {
			fmt.Fprintf(s.stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(outcomes)+len(output.Unconfigured))
	for _, outcome := range outcomes {
		rows = append(rows, []string{
			outcome.Language,
			string(outcome.Status),
			strconv.Itoa(outcome.Trigrams),
			outcome.Reason,
		})
	}
	for _, lang := range output.Unconfigured {
		rows = append(rows, []string{lang, "unconfigured", "", "not listed in LANGUAGES"})
	}
	if err := writeTable(s.stdout, []string{"LANGUAGE", "STATUS", "TRIGRAMS", "REASON"}, rows); err != nil {
		fmt.Fprintf(s.stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}

func unconfiguredLanguages(stored, configured []string) []string {
	known := make(map[string]struct{}, len(configured))
	for _, lang := range configured {
		known[lang] = struct{}{}
	}

	out := make([]string, 0)
	for _, lang := range language.Dedupe(stored) {
		if _, ok := known[lang]; !ok {
			out = append(out, lang)
		}
	}
	return out
}
