package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/profilestore"
	"horse.fit/langid/internal/reader"
)

const defaultMinWordCount = 10

type Options struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	MinWordCount       int
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	// AdminTokenHash guards administrative routes when set.
	AdminTokenHash string
}

// TextDetector is an alternative detection method served next to the
// trigram detector.
type TextDetector interface {
	Detect(text string) detector.Result
}

// Dependencies are the detection components a Server exposes.
type Dependencies struct {
	Detector  *detector.Detector
	Lingua    TextDetector
	Store     profilestore.Store
	Languages []string
	Outcomes  []detector.LoadOutcome
}

type Server struct {
	detector  *detector.Detector
	lingua    TextDetector
	store     profilestore.Store
	languages []string
	logger    zerolog.Logger
	opts      Options

	mu       sync.RWMutex
	outcomes []detector.LoadOutcome
}

func NewServer(deps Dependencies, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	minWordCount := opts.MinWordCount
	if minWordCount <= 0 {
		minWordCount = defaultMinWordCount
	}
	maxBodyBytes := opts.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = reader.DefaultBodyByteLimit
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	languages := language.Dedupe(deps.Languages)
	if len(languages) == 0 && deps.Detector != nil {
		languages = deps.Detector.Profiles().Languages()
	}

	s := &Server{
		detector:  deps.Detector,
		lingua:    deps.Lingua,
		store:     deps.Store,
		languages: languages,
		logger:    logger,
		opts: Options{
			Host:               host,
			Port:               port,
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			ShutdownTimeout:    shutdownTimeout,
			MinWordCount:       minWordCount,
			MaxBodyBytes:       maxBodyBytes,
			CORSAllowedOrigins: origins,
			AdminTokenHash:     strings.TrimSpace(opts.AdminTokenHash),
		},
	}
	s.setOutcomes(deps.Outcomes)
	return s
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			httpRequestsTotal.WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).Inc()
			httpRequestDuration.WithLabelValues(v.Method, route).Observe(v.Latency.Seconds())

			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	api.POST("/detect-language", s.handleDetectLanguage)
	api.POST("/profiles/reload", s.handleReloadProfiles, s.requireAdmin)

	return e
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.detector == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Int("profiles", s.detector.Profiles().Len()).
		Msg("langid server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("langid server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}

func (s *Server) setOutcomes(outcomes []detector.LoadOutcome) {
	copied := append([]detector.LoadOutcome(nil), outcomes...)

	s.mu.Lock()
	s.outcomes = copied
	s.mu.Unlock()

	if s.detector != nil {
		profilesLoaded.Set(float64(s.detector.Profiles().Len()))
	}
}

func (s *Server) loadOutcomes() []detector.LoadOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]detector.LoadOutcome(nil), s.outcomes...)
}
