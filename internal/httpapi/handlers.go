package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/langdetect"
)

type languageItem struct {
	Language string              `json:"language"`
	Status   detector.LoadStatus `json:"status"`
	Reason   string              `json:"reason,omitempty"`
	Trigrams int                 `json:"trigrams"`
}

func (s *Server) handleHealth(c echo.Context) error {
	profiles := 0
	if s.detector != nil {
		profiles = s.detector.Profiles().Len()
	}
	return success(c, map[string]any{
		"service":  "langid",
		"time":     time.Now().UTC(),
		"profiles": profiles,
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	byLanguage := make(map[string]detector.LoadOutcome)
	for _, outcome := range s.loadOutcomes() {
		byLanguage[outcome.Language] = outcome
	}

	set := detector.NewProfileSet(nil)
	if s.detector != nil {
		set = s.detector.Profiles()
	}

	items := make([]languageItem, 0, len(s.languages))
	for _, lang := range s.languages {
		item := languageItem{Language: lang, Status: detector.LoadStatusSkipped}
		if outcome, ok := byLanguage[lang]; ok {
			item.Status = outcome.Status
			item.Reason = outcome.Reason
		}
		if count := set.TrigramCount(lang); count > 0 {
			item.Status = detector.LoadStatusLoaded
			item.Reason = ""
			item.Trigrams = count
		}
		items = append(items, item)
	}

	return success(c, map[string]any{
		"items":   items,
		"loaded":  set.Len(),
		"methods": s.methods(),
	})
}

func (s *Server) handleReloadProfiles(c echo.Context) error {
	if s.detector == nil || s.store == nil {
		profileReloadsTotal.WithLabelValues("unavailable").Inc()
		return unavailable(c, "Profile store is not configured")
	}

	outcomes := s.detector.Reload(c.Request().Context(), s.store, s.languages, s.logger)
	s.setOutcomes(outcomes)

	loaded := s.detector.Profiles().Len()
	status := "ok"
	if loaded == 0 {
		status = "empty"
	}
	profileReloadsTotal.WithLabelValues(status).Inc()

	return success(c, map[string]any{
		"loaded": loaded,
		"items":  outcomes,
	})
}

func (s *Server) methods() []string {
	methods := []string{detector.Method}
	if s.lingua != nil {
		methods = append(methods, langdetect.Method)
	}
	return methods
}
