package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/db"
	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/logging"
	"horse.fit/langid/internal/profilestore"
)

const (
	migrateStatusCopied  = "copied"
	migrateStatusSkipped = "skipped"
	migrateStatusFailed  = "failed"
)

type migrateOutcome struct {
	Language string `json:"language"`
	Status   string `json:"status"`
	Trigrams int    `json:"trigrams"`
	Reason   string `json:"reason,omitempty"`
}

func runMigrate(args []string, s streams) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	overrides := addConfigOverrides(fs)
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(s.stderr, "migrate does not accept positional arguments")
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
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		fmt.Fprintln(s.stderr, "DATABASE_URL is required for migrate")
		return 1
	}

	logger, err := logging.NewWithWriter(cfg.Environment, cfg.LogLevel, s.stderr)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	source := profilestore.NewFileStore(cfg.ProfileDir)
	languages := cfg.LanguageList()
	if strings.TrimSpace(*overrides.languages) == "" {
		stored, err := source.Languages(ctx)
		if err != nil {
			fmt.Fprintf(s.stderr, "Failed to list profile files: %v\n", err)
			return 1
		}
		languages = language.Dedupe(append(languages, stored...))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("migrate failed to connect to database")
		fmt.Fprintf(s.stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	outcomes := migrateProfiles(ctx, source, profilestore.NewDBStore(pool), languages, logger)

	if outputFormat == outputFormatJSON {
		if err := printJSON(s.stdout, outcomes); err != nil {
			fmt.Fprintf(s.stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
	} else {
		rows := make([][]string, 0, len(outcomes))
		for _, outcome := range outcomes {
			rows = append(rows, []string{outcome.Language, outcome.Status, strconv.Itoa(outcome.Trigrams), outcome.Reason})
		}
		if err := writeTable(s.stdout, []string{"LANGUAGE", "STATUS", "TRIGRAMS", "REASON"}, rows); err != nil {
			fmt.Fprintf(s.stderr, "Failed to write table: %v\n", err)
			return 1
		}
	}

	for _, outcome := range outcomes {
		if outcome.Status == migrateStatusFailed {
			return 1
		}
	}
	return 0
}

// migrateProfiles copies every language from one store to another. Missing
// source artifacts are skipped.
func migrateProfiles(ctx context.Context, from, to profilestore.Store, languages []string, logger zerolog.Logger) []migrateOutcome {
	ids := language.Dedupe(languages)
	outcomes := make([]migrateOutcome, 0, len(ids))

	for _, id := range ids {
		outcome := migrateOutcome{Language: id}

		profile, err := from.Read(ctx, id)
		switch {
		case errors.Is(err, profilestore.ErrNotFound):
			outcome.Status = migrateStatusSkipped
			outcome.Reason = "no source profile"
		case err != nil:
			outcome.Status = migrateStatusFailed
			outcome.Reason = err.Error()
			logger.Error().Err(err).Str("language", id).Msg("read source profile failed")
		default:
			if err := to.Write(ctx, id, profile); err != nil {
				outcome.Status = migrateStatusFailed
				outcome.Reason = err.Error()
				logger.Error().Err(err).Str("language", id).Msg("write target profile failed")
			} else {
				outcome.Status = migrateStatusCopied
				outcome.Trigrams = profile.Len()
				logger.Info().Str("language", id).Int("trigrams", profile.Len()).Msg("language profile migrated")
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
