// Package builder turns per-language training corpora into persisted trigram profiles.
package builder

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"horse.fit/langid/internal/corpus"
	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/ngram"
	"horse.fit/langid/internal/profilestore"
)

const DefaultParallelism = 4

type Status string

const (
	StatusBuilt   Status = "built"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome reports what happened to one language.
type Outcome struct {
	Language  string        `json:"language"`
	Status    Status        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Sentences int           `json:"sentences"`
	Trigrams  int           `json:"trigrams"`
	Distinct  int           `json:"distinct"`
	Duration  time.Duration `json:"duration"`
}

// Report holds one outcome per requested language, sorted by language.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

func (r Report) Count(status Status) int {
	n := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			n++
		}
	}
	return n
}

// Built lists the languages whose profile was written.
func (r Report) Built() []string {
	out := make([]string, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusBuilt {
			out = append(out, outcome.Language)
		}
	}
	return out
}

type Options struct {
	Parallelism int
}

type Builder struct {
	source      corpus.Source
	store       profilestore.Store
	logger      zerolog.Logger
	parallelism int
}

func New(source corpus.Source, store profilestore.Store, logger zerolog.Logger, opts Options) *Builder {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Builder{
		source:      source,
		store:       store,
		logger:      logger,
		parallelism: parallelism,
	}
}

// BuildProfiles builds and persists a profile for every language. A failure
// for one language never stops the others.
func (b *Builder) BuildProfiles(ctx context.Context, languages []string) Report {
	ids := language.Dedupe(languages)
	outcomes := make([]Outcome, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.parallelism)
	for i, id := range ids {
		group.Go(func() error {
			outcomes[i] = b.buildOne(groupCtx, id)
			return nil
		})
	}
	_ = group.Wait()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Language < outcomes[j].Language
	})

	report := Report{Outcomes: outcomes}
	b.logger.Info().
		Int("built", report.Count(StatusBuilt)).
		Int("skipped", report.Count(StatusSkipped)).
		Int("failed", report.Count(StatusFailed)).
		Msg("language profile generation complete")
	return report
}

func (b *Builder) buildOne(ctx context.Context, lang string) Outcome {
	started := time.Now()
	outcome := Outcome{Language: lang}
	finish := func(status Status, reason string) Outcome {
		outcome.Status = status
		outcome.Reason = reason
		outcome.Duration = time.Since(started)
		return outcome
	}

	if b.source == nil || b.store == nil {
		return finish(StatusFailed, "builder is not initialized")
	}

	lines, err := b.source.Lines(ctx, lang)
	if err != nil {
		if errors.Is(err, corpus.ErrNotFound) {
			b.logger.Warn().Str("language", lang).Msg("no training data found")
			return finish(StatusSkipped, "no training data found")
		}
		b.logger.Error().Err(err).Str("language", lang).Msg("read training data failed")
		return finish(StatusFailed, err.Error())
	}

	sentences := corpus.Sentences(lines)
	counter := ngram.NewCounter()
	for _, sentence := range sentences {
		counter.Add(ngram.Extract(sentence))
	}
	outcome.Sentences = len(sentences)
	outcome.Trigrams = counter.Total()
	outcome.Distinct = counter.Distinct()

	if counter.Total() == 0 {
		b.logger.Warn().Str("language", lang).Int("lines", len(lines)).Msg("no usable sentences in training data")
		return finish(StatusSkipped, "no usable sentences")
	}

	if err := b.store.Write(ctx, lang, counter.Profile()); err != nil {
		b.logger.Error().Err(err).Str("language", lang).Msg("write language profile failed")
		return finish(StatusFailed, err.Error())
	}

	result := finish(StatusBuilt, "")
	b.logger.Info().
		Str("language", lang).
		Int("sentences", result.Sentences).
		Int("trigrams", result.Trigrams).
		Int("distinct", result.Distinct).
		Dur("duration", result.Duration).
		Msg("generated language profile")
	return result
}
