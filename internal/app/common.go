package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/config"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

// configOverrides are flags that take precedence over the environment.
type configOverrides struct {
	profileDir *string
	languages  *string
}

func addConfigOverrides(fs *flag.FlagSet) *configOverrides {
	return &configOverrides{
		profileDir: fs.String("profile-dir", "", "Profile directory (overrides PROFILE_DIR)"),
		languages:  fs.String("languages", "", "Comma separated languages (overrides LANGUAGES)"),
	}
}

func (o *configOverrides) apply(cfg *config.Config) {
	if o == nil || cfg == nil {
		return
	}
	if value := strings.TrimSpace(*o.profileDir); value != "" {
		cfg.ProfileDir = value
	}
	if value := strings.TrimSpace(*o.languages); value != "" {
		cfg.Languages = value
	}
}

func loadConfig(envLoader *cli.EnvLoader, overrides *configOverrides, stderr io.Writer) (*config.Config, error) {
	if envLoader != nil {
		envLoader.SetOutput(stderr)
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}
