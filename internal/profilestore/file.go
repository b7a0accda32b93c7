package profilestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"horse.fit/langid/internal/language"
	"horse.fit/langid/internal/ngram"
)

const artifactExt = ".json"

// FileStore keeps one <language>.json artifact per language in Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: strings.TrimSpace(dir)}
}

func (s *FileStore) Path(lang string) string {
	return filepath.Join(s.Dir, lang+artifactExt)
}

// Write replaces the artifact for lang. The directory is created when
// missing and the file is swapped in with a rename.
func (s *FileStore) Write(ctx context.Context, lang string, profile ngram.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := identifier(lang)
	if err != nil {
		return err
	}

	payload, err := Encode(profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp profile: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp profile: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(id)); err != nil {
		return fmt.Errorf("publish profile: %w", err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, lang string) (ngram.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := identifier(lang)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read profile %s: %w", id, err)
	}

	profile, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return profile, nil
}

// Languages lists the languages that have an artifact in Dir.
func (s *FileStore) Languages(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list profile directory: %w", err)
	}

	languages := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != artifactExt {
			continue
		}
		id := language.NormalizeIdentifier(strings.TrimSuffix(name, artifactExt))
		if id == "" {
			continue
		}
		languages = append(languages, id)
	}
	sort.Strings(languages)
	return languages, nil
}

func identifier(lang string) (string, error) {
	id := language.NormalizeIdentifier(lang)
	if id == "" {
		return "", fmt.Errorf("invalid language identifier %q", lang)
	}
	return id, nil
}
