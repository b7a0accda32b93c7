package db

import (
	"encoding/json"
	"time"
)

// LanguageProfile maps language_profiles. Trigrams holds the flat
// trigram -> frequency object of one language.
type LanguageProfile struct {
	Language     string          `gorm:"column:language;type:text;primaryKey"`
	Trigrams     json.RawMessage `gorm:"column:trigrams;type:jsonb;not null"`
	TrigramCount int             `gorm:"column:trigram_count;type:integer;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (LanguageProfile) TableName() string { return "language_profiles" }

func autoMigrateModels() []any {
	return []any{
		&LanguageProfile{},
	}
}
