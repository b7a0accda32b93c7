package profilestore

import (
	"context"
	"sort"
	"sync"

	"horse.fit/langid/internal/ngram"
)

// MemoryStore keeps profiles in process memory. Profiles are copied on the
// way in and out.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]ngram.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]ngram.Profile)}
}

func (s *MemoryStore) Write(ctx context.Context, lang string, profile ngram.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := identifier(lang)
	if err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = profile.Clone()
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, lang string) (ngram.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := identifier(lang)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, notFound(id)
	}
	return profile.Clone(), nil
}

func (s *MemoryStore) Languages(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	languages := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		languages = append(languages, id)
	}
	sort.Strings(languages)
	return languages, nil
}
