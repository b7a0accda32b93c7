package detector

import (
	"sort"

	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/ngram"
)

// ProfileSet is an immutable snapshot of the loaded language profiles.
type ProfileSet struct {
	languages  []string
	profiles   map[string]ngram.Profile
	magnitudes map[string]float64
}

// NewProfileSet copies profiles into a new set. Empty or invalid profiles and
// invalid identifiers are dropped. When several keys normalize to the same
// identifier, the first key in sorted order wins.
func NewProfileSet(profiles map[string]ngram.Profile) *ProfileSet {
	set := &ProfileSet{
		languages:  make([]string, 0, len(profiles)),
		profiles:   make(map[string]ngram.Profile, len(profiles)),
		magnitudes: make(map[string]float64, len(profiles)),
	}

	keys := make([]string, 0, len(profiles))
	for key := range profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		profile := profiles[key]
		id := language.NormalizeIdentifier(key)
		if id == "" || profile.Len() == 0 || profile.Validate() != nil {
			continue
		}
		if _, exists := set.profiles[id]; exists {
			continue
		}
		magnitude := profile.Magnitude()
		if magnitude == 0 {
			continue
		}
		set.languages = append(set.languages, id)
		set.profiles[id] = profile.Clone()
		set.magnitudes[id] = magnitude
	}
	sort.Strings(set.languages)
	return set
}

// Languages returns the loaded languages in alphabetical order.
func (s *ProfileSet) Languages() []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s.languages...)
}

func (s *ProfileSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.languages)
}

// TrigramCount returns the number of distinct trigrams in a language profile.
func (s *ProfileSet) TrigramCount(lang string) int {
	if s == nil {
		return 0
	}
	return s.profiles[lang].Len()
}
