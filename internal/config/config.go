package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"horse.fit/langid/internal/auth"
	"horse.fit/langid/internal/language"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	ProfileStore     string `envconfig:"PROFILE_STORE" default:"file"`
	ProfileDir       string `envconfig:"PROFILE_DIR" default:"language_profiles"`
	CorpusDir        string `envconfig:"CORPUS_DIR" default:"datasets"`
	Languages        string `envconfig:"LANGUAGES" default:"english,arabic,german,spanish,french,italian,portuguese,russian"`
	BuildParallelism int    `envconfig:"BUILD_PARALLELISM" default:"4"`
	MinWordCount     int    `envconfig:"MIN_WORD_COUNT" default:"10"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"LANGID_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"LANGID_DB_MAX_CONNS" default:"8"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
	AdminTokenHash     string `envconfig:"ADMIN_TOKEN_HASH" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.ProfileStore = strings.ToLower(strings.TrimSpace(cfg.ProfileStore))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.ProfileStore {
	case StoreFile:
		if strings.TrimSpace(c.ProfileDir) == "" {
			return fmt.Errorf("PROFILE_DIR is required when PROFILE_STORE=file")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when PROFILE_STORE=postgres")
		}
	default:
		return fmt.Errorf("PROFILE_STORE must be %q or %q, got %q", StoreFile, StorePostgres, c.ProfileStore)
	}
	if len(c.LanguageList()) == 0 {
		return fmt.Errorf("LANGUAGES must name at least one language")
	}
	if c.BuildParallelism < 1 {
		return fmt.Errorf("BUILD_PARALLELISM must be >= 1")
	}
	if c.MinWordCount < 1 {
		return fmt.Errorf("MIN_WORD_COUNT must be >= 1")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("LANGID_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("LANGID_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("LANGID_DB_MIN_CONNS (%d) cannot exceed LANGID_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.AdminTokenHash) != "" {
		if err := auth.ValidateHash(c.AdminTokenHash); err != nil {
			return fmt.Errorf("ADMIN_TOKEN_HASH: %w", err)
		}
	}
	return nil
}

// LanguageList returns the configured languages, normalized and deduplicated.
func (c *Config) LanguageList() []string {
	if c == nil {
		return nil
	}
	return language.ParseList(c.Languages)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
