package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProfileRow is one stored language profile.
type ProfileRow struct {
	Language     string
	Trigrams     json.RawMessage
	TrigramCount int
	UpdatedAt    time.Time
}

// UpsertLanguageProfileParams controls language profile upserts.
type UpsertLanguageProfileParams struct {
	Language     string
	Trigrams     json.RawMessage
	TrigramCount int
}

func (p *Pool) UpsertLanguageProfile(ctx context.Context, row UpsertLanguageProfileParams) error {
	const q = `
INSERT INTO language_profiles (
	language,
	trigrams,
	trigram_count,
	created_at,
	updated_at
)
VALUES ($1, $2::jsonb, $3, now(), now())
ON CONFLICT (language)
DO UPDATE SET
	trigrams = EXCLUDED.trigrams,
	trigram_count = EXCLUDED.trigram_count,
	updated_at = now()
`

	tag, err := p.Exec(
		ctx,
		q,
		strings.TrimSpace(row.Language),
		string(row.Trigrams),
		row.TrigramCount,
	)
	if err != nil {
		return fmt.Errorf("upsert language profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upsert language profile %s affected no rows", row.Language)
	}
	return nil
}

func (p *Pool) GetLanguageProfile(ctx context.Context, language string) (ProfileRow, error) {
	const q = `
SELECT
	language,
	trigrams::text,
	trigram_count,
	updated_at
FROM language_profiles
WHERE language = $1
LIMIT 1
`

	var (
		row      ProfileRow
		trigrams string
	)
	err := p.QueryRow(ctx, q, strings.TrimSpace(language)).Scan(
		&row.Language,
		&trigrams,
		&row.TrigramCount,
		&row.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return ProfileRow{}, ErrNoRows
		}
		return ProfileRow{}, fmt.Errorf("query language profile: %w", err)
	}
	row.Trigrams = json.RawMessage(trigrams)
	return row, nil
}

func (p *Pool) ListProfileLanguages(ctx context.Context) ([]string, error) {
	const q = `
SELECT language
FROM language_profiles
ORDER BY language ASC
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query profile languages: %w", err)
	}
	defer rows.Close()

	languages := make([]string, 0, 8)
	for rows.Next() {
		var language string
		if err := rows.Scan(&language); err != nil {
			return nil, fmt.Errorf("scan profile language: %w", err)
		}
		languages = append(languages, language)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile languages: %w", err)
	}
	return languages, nil
}
