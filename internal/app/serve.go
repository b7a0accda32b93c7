package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"horse.fit/langid/internal/cli"
	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/httpapi"
	"horse.fit/langid/internal/langdetect"
	"horse.fit/langid/internal/logging"
	"horse.fit/langid/internal/profilestore"
)

func runServe(args []string, s streams) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(s.stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	overrides := addConfigOverrides(fs)
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8090, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	enableLingua := fs.Bool("lingua", true, "Serve the lingua detection method")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(s.stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, err := loadConfig(envLoader, overrides, s.stderr)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(s.stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer storeCancel()

	store, closeStore, err := profilestore.Open(storeCtx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("store", cfg.ProfileStore).Msg("serve failed to open profile store")
		fmt.Fprintf(s.stderr, "Failed to open profile store: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("close profile store failed")
		}
	}()

	if cfg.AdminTokenHash == "" {
		logger.Warn().Msg("ADMIN_TOKEN_HASH is not set; profile reload endpoint is unauthenticated")
	}

	languages := cfg.LanguageList()
	set, outcomes := detector.Load(storeCtx, store, languages, logger)
	if set.Len() == 0 {
		logger.Warn().Msg("no language profiles loaded; ngram detections will return unknown until profiles are built and reloaded")
	}

	var lingua httpapi.TextDetector
	if *enableLingua {
		l, err := langdetect.NewLingua(languages)
		if err != nil {
			logger.Warn().Err(err).Msg("lingua method disabled")
		} else {
			lingua = l
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Detector:  detector.New(set),
		Lingua:    lingua,
		Store:     store,
		Languages: languages,
		Outcomes:  outcomes,
	}, logger, httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		MinWordCount:       cfg.MinWordCount,
		CORSAllowedOrigins: cfg.CORSAllowedOriginsList(),
		AdminTokenHash:     cfg.AdminTokenHash,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(s.stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
