// Package langdetect wraps lingua-go as an alternative detection method
// restricted to the languages langid knows about.
package langdetect

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	lingua "github.com/pemistahl/lingua-go"

	"horse.fit/langid/internal/detector"
	"horse.fit/langid/internal/language"
)

// Method names lingua detections in results.
const Method = "lingua"

type Lingua struct {
	languages []lingua.Language
	names     map[lingua.Language]string

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLingua maps language identifiers such as "english" onto lingua languages.
// Models are loaded on first use.
func NewLingua(ids []string) (*Lingua, error) {
	byName := make(map[string]lingua.Language)
	for _, candidate := range lingua.AllLanguages() {
		byName[strings.ToLower(candidate.String())] = candidate
	}

	l := &Lingua{names: make(map[lingua.Language]string)}
	unknown := make([]string, 0)
	for _, id := range language.Dedupe(ids) {
		candidate, ok := byName[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		l.languages = append(l.languages, candidate)
		l.names[candidate] = id
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("lingua does not support: %s", strings.Join(unknown, ", "))
	}
	if len(l.languages) < 2 {
		return nil, fmt.Errorf("lingua needs at least 2 languages, got %d", len(l.languages))
	}
	return l, nil
}

// Languages returns the configured identifiers.
func (l *Lingua) Languages() []string {
	out := make([]string, 0, len(l.languages))
	for _, candidate := range l.languages {
		out = append(out, l.names[candidate])
	}
	return out
}

func (l *Lingua) Detect(text string) detector.Result {
	unknown := detector.Result{Language: language.Unknown, Confidence: 0, Method: Method}
	sample := strings.TrimSpace(text)
	if utf8.RuneCountInString(sample) < detector.MinTextRunes {
		return unknown
	}

	d := l.get()
	detected, exists := d.DetectLanguageOf(sample)
	if !exists {
		return unknown
	}
	name, ok := l.names[detected]
	if !ok {
		return unknown
	}

	confidence := int(math.Round(d.ComputeLanguageConfidence(sample, detected) * 100))
	confidence = max(0, min(confidence, 100))
	return detector.Result{Language: name, Confidence: confidence, Method: Method}
}

func (l *Lingua) get() lingua.LanguageDetector {
	l.once.Do(func() {
		l.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(l.languages...).
			Build()
	})
	return l.detector
}
