// Package detector identifies the language of a text by comparing its trigram
// profile against loaded language profiles.
package detector

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/ngram"
	"horse.fit/langid/internal/profilestore"
)

const (
	// Method names this engine in results.
	Method = "ngram"
	// MinTextRunes is the shortest text Detect will classify.
	MinTextRunes = 10
)

// Result is the outcome of one detection.
type Result struct {
	Language   string `json:"language"`
	Confidence int    `json:"confidence"`
	Method     string `json:"method"`
}

// Unknown is returned for short input or when no profiles are loaded.
func Unknown() Result {
	return Result{Language: language.Unknown, Confidence: 0, Method: Method}
}

// Score is the similarity of a text to one language.
type Score struct {
	Language   string  `json:"language"`
	Similarity float64 `json:"similarity"`
}

// Detector answers detections from an immutable ProfileSet. The set is
// replaced as a whole by Swap or Reload; concurrent Detect calls need no locking.
type Detector struct {
	profiles atomic.Pointer[ProfileSet]
}

func New(set *ProfileSet) *Detector {
	d := &Detector{}
	d.Swap(set)
	return d
}

// Swap publishes set and returns the previous one.
func (d *Detector) Swap(set *ProfileSet) *ProfileSet {
	if set == nil {
		set = NewProfileSet(nil)
	}
	return d.profiles.Swap(set)
}

// Profiles returns the current snapshot.
func (d *Detector) Profiles() *ProfileSet {
	set := d.profiles.Load()
	if set == nil {
		return NewProfileSet(nil)
	}
	return set
}

// Reload reads a complete new set from store and publishes it.
func (d *Detector) Reload(ctx context.Context, store profilestore.Store, languages []string, logger zerolog.Logger) []LoadOutcome {
	set, outcomes := Load(ctx, store, languages, logger)
	d.Swap(set)
	return outcomes
}

// Detect returns the best matching language. Ties go to the language that
// sorts first alphabetically.
func (d *Detector) Detect(text string) Result {
	if utf8.RuneCountInString(text) < MinTextRunes {
		return Unknown()
	}

	set := d.Profiles()
	if set.Len() == 0 {
		return Unknown()
	}

	input := ngram.FromText(text)
	inputMagnitude := input.Magnitude()

	bestLanguage := ""
	bestSimilarity := math.Inf(-1)
	for _, lang := range set.languages {
		similarity := ngram.CosineWithMagnitudes(input, inputMagnitude, set.profiles[lang], set.magnitudes[lang])
		if similarity > bestSimilarity {
			bestLanguage = lang
			bestSimilarity = similarity
		}
	}

	return Result{
		Language:   bestLanguage,
		Confidence: confidence(bestSimilarity),
		Method:     Method,
	}
}

// Rank scores text against every loaded language, best match first.
// Short input or an empty set yields no scores.
func (d *Detector) Rank(text string) []Score {
	if utf8.RuneCountInString(text) < MinTextRunes {
		return []Score{}
	}
	return d.Profiles().rank(text)
}

// DetectWithScores returns the best match together with the full ranking,
// both computed from the same profile snapshot.
func (d *Detector) DetectWithScores(text string) (Result, []Score) {
	if utf8.RuneCountInString(text) < MinTextRunes {
		return Unknown(), []Score{}
	}

	scores := d.Profiles().rank(text)
	if len(scores) == 0 {
		return Unknown(), scores
	}
	return Result{
		Language:   scores[0].Language,
		Confidence: confidence(scores[0].Similarity),
		Method:     Method,
	}, scores
}

func (s *ProfileSet) rank(text string) []Score {
	input := ngram.FromText(text)
	inputMagnitude := input.Magnitude()

	scores := make([]Score, 0, s.Len())
	for _, lang := range s.languages {
		scores = append(scores, Score{
			Language:   lang,
			Similarity: ngram.CosineWithMagnitudes(input, inputMagnitude, s.profiles[lang], s.magnitudes[lang]),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Similarity != scores[j].Similarity {
			return scores[i].Similarity > scores[j].Similarity
		}
		return scores[i].Language < scores[j].Language
	})
	return scores
}

func confidence(similarity float64) int {
	if math.IsNaN(similarity) || similarity <= 0 {
		return 0
	}
	pct := math.Round(similarity * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}
