package profilestore

import (
	"context"
	"encoding/json"
	"fmt"

	"horse.fit/langid/internal/db"
	"horse.fit/langid/internal/ngram"
)

type profileRowStore interface {
	UpsertLanguageProfile(ctx context.Context, row db.UpsertLanguageProfileParams) error
	GetLanguageProfile(ctx context.Context, language string) (db.ProfileRow, error)
	ListProfileLanguages(ctx context.Context) ([]string, error)
}

// DBStore keeps profiles in the language_profiles table.
type DBStore struct {
	rows profileRowStore
}

func NewDBStore(pool *db.Pool) *DBStore {
	return &DBStore{rows: pool}
}

func newDBStoreWithRows(rows profileRowStore) *DBStore {
	return &DBStore{rows: rows}
}

func (s *DBStore) Write(ctx context.Context, lang string, profile ngram.Profile) error {
	id, err := identifier(lang)
	if err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return s.rows.UpsertLanguageProfile(ctx, db.UpsertLanguageProfileParams{
		Language:     id,
		Trigrams:     payload,
		TrigramCount: len(profile),
	})
}

func (s *DBStore) Read(ctx context.Context, lang string) (ngram.Profile, error) {
	id, err := identifier(lang)
	if err != nil {
		return nil, err
	}

	row, err := s.rows.GetLanguageProfile(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, notFound(id)
		}
		return nil, err
	}

	profile, err := Decode(row.Trigrams)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return profile, nil
}

func (s *DBStore) Languages(ctx context.Context) ([]string, error) {
	languages, err := s.rows.ListProfileLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored profiles: %w", err)
	}
	return languages, nil
}
