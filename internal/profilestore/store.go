// Package profilestore persists one trigram frequency profile per language.
package profilestore

import (
	"context"
	"errors"
	"fmt"

	"horse.fit/langid/internal/ngram"
)

var ErrNotFound = errors.New("profile not found")

// Store reads and writes language profiles. Read returns an error wrapping
// ErrNotFound when no artifact exists for the language.
type Store interface {
	Write(ctx context.Context, lang string, profile ngram.Profile) error
	Read(ctx context.Context, lang string) (ngram.Profile, error)
}

// Lister is implemented by stores that can enumerate their artifacts.
type Lister interface {
	Languages(ctx context.Context) ([]string, error)
}

// StoredLanguages lists the artifacts in store, or reports false when the
// store cannot enumerate them.
func StoredLanguages(ctx context.Context, store Store) ([]string, bool, error) {
	lister, ok := store.(Lister)
	if !ok {
		return nil, false, nil
	}
	languages, err := lister.Languages(ctx)
	if err != nil {
		return nil, true, err
	}
	return languages, true, nil
}

func notFound(lang string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, lang)
}
