package detector

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/ngram"
	"horse.fit/langid/internal/profilestore"
)

type LoadStatus string

const (
	LoadStatusLoaded  LoadStatus = "loaded"
	LoadStatusSkipped LoadStatus = "skipped"
	LoadStatusFailed  LoadStatus = "failed"
)

// LoadOutcome reports how one language fared during Load.
type LoadOutcome struct {
	Language string     `json:"language"`
	Status   LoadStatus `json:"status"`
	Reason   string     `json:"reason,omitempty"`
	Trigrams int        `json:"trigrams"`
}

// Load reads every language from store into a new ProfileSet. Missing or
// unreadable profiles are reported per language and left out of the set.
func Load(ctx context.Context, store profilestore.Store, languages []string, logger zerolog.Logger) (*ProfileSet, []LoadOutcome) {
	ids := language.Dedupe(languages)
	outcomes := make([]LoadOutcome, 0, len(ids))
	profiles := make(map[string]ngram.Profile, len(ids))

	for _, id := range ids {
		outcome := LoadOutcome{Language: id}

		if store == nil {
			outcome.Status = LoadStatusFailed
			outcome.Reason = "profile store is not configured"
			outcomes = append(outcomes, outcome)
			continue
		}

		profile, err := store.Read(ctx, id)
		switch {
		case errors.Is(err, profilestore.ErrNotFound):
			outcome.Status = LoadStatusSkipped
			outcome.Reason = "profile not found"
			logger.Debug().Str("language", id).Msg("no language profile found")
		case err != nil:
			outcome.Status = LoadStatusFailed
			outcome.Reason = err.Error()
			logger.Error().Err(err).Str("language", id).Msg("load language profile failed")
		case profile.Len() == 0:
			outcome.Status = LoadStatusFailed
			outcome.Reason = "profile is empty"
			logger.Warn().Str("language", id).Msg("language profile is empty")
		case profile.Magnitude() == 0:
			outcome.Status = LoadStatusFailed
			outcome.Reason = "profile has zero magnitude"
			logger.Warn().Str("language", id).Msg("language profile has zero magnitude")
		default:
			outcome.Status = LoadStatusLoaded
			outcome.Trigrams = profile.Len()
			profiles[id] = profile
		}
		outcomes = append(outcomes, outcome)
	}

	set := NewProfileSet(profiles)
	logger.Info().
		Int("loaded", set.Len()).
		Int("requested", len(ids)).
		Strs("languages", set.Languages()).
		Msg("language profiles loaded")
	return set, outcomes
}
