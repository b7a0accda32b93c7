// Package corpus reads per-language training sentences.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"horse.fit/langid/internal/language"
)

const (
	// TrainingFile is the corpus file name inside each language directory.
	TrainingFile = "training_data.txt"
	// MinSentenceRunes is the shortest sentence kept for training.
	MinSentenceRunes = 11
	commentMarker    = "#"
)

var ErrNotFound = errors.New("corpus not found")

// Source yields the raw lines of a language corpus.
type Source interface {
	Lines(ctx context.Context, lang string) ([]string, error)
}

// DirSource reads <Root>/<language>/training_data.txt.
type DirSource struct {
	Root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{Root: strings.TrimSpace(root)}
}

func (s *DirSource) Path(lang string) string {
	return filepath.Join(s.Root, lang, TrainingFile)
}

func (s *DirSource) Lines(ctx context.Context, lang string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("corpus source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := language.NormalizeIdentifier(lang)
	if id == "" {
		return nil, fmt.Errorf("invalid language identifier %q", lang)
	}

	path := s.Path(id)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	return SplitLines(string(content)), nil
}

// MemorySource serves corpora from memory.
type MemorySource map[string][]string

func (s MemorySource) Lines(ctx context.Context, lang string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, ok := s[language.NormalizeIdentifier(lang)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, lang)
	}
	return append([]string(nil), lines...), nil
}

// SplitLines splits on "\n" and strips a trailing "\r" from each line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Sentences drops blank lines, comment lines and lines of 10 runes or fewer.
func Sentences(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, commentMarker) {
			continue
		}
		if utf8.RuneCountInString(line) < MinSentenceRunes {
			continue
		}
		out = append(out, line)
	}
	return out
}
