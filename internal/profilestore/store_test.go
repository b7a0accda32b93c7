package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"horse.fit/langid/internal/config"
	"horse.fit/langid/internal/db"
	"horse.fit/langid/internal/ngram"
)

func TestFileStoreRoundTripIsLossless(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "profiles"))
	profile := ngram.FromText("Съешь же ещё этих мягких французских булок, да выпей чаю <&>")

	if err := store.Write(context.Background(), "russian", profile); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := store.Read(context.Background(), "Russian")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, profile) {
		t.Fatalf("round trip changed the profile")
	}
	for key, value := range profile {
		if math.Float64bits(got[key]) != math.Float64bits(value) {
			t.Fatalf("frequency of %q changed: got %v want %v", key, got[key], value)
		}
	}
}

func TestFileStoreWritesFlatIndentedObject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := store.Write(context.Background(), "english", ngram.Profile{"the": 1}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "english.json"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if got, want := string(raw), "{\n  \"the\": 1\n}\n"; got != want {
		t.Fatalf("unexpected artifact: got %q want %q", got, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in the directory, got %d entries", len(entries))
	}
}

func TestFileStoreOverwrites(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := store.Write(ctx, "german", ngram.Profile{"der": 1}); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := store.Write(ctx, "german", ngram.Profile{"die": 0.5, "das": 0.5}); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	got, err := store.Read(ctx, "german")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, stale := got["der"]; stale || got.Len() != 2 {
		t.Fatalf("expected overwritten profile, got %v", got)
	}
}

func TestFileStoreMissingArtifact(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	if _, err := store.Read(context.Background(), "italian"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreRejectsCorruptArtifacts(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":       `{"the": 0.5`,
		"not an object":  `[0.5, 0.5]`,
		"string value":   `{"the": "0.5"}`,
		"negative value": `{"the": -0.5}`,
		"too large":      `{"the": 1.5}`,
		"empty key":      `{"": 1}`,
		"trailing":       `{"the": 1} {}`,
		"empty":          `   `,
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "french.json"), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		_, err := NewFileStore(dir).Read(context.Background(), "french")
		if err == nil {
			t.Fatalf("%s: expected read error", name)
		}
		if errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: corrupt artifact reported as missing", name)
		}
	}
}

func TestFileStoreRejectsInvalidIdentifier(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	if err := store.Write(context.Background(), "../escape", ngram.Profile{"abc": 1}); err == nil {
		t.Fatalf("expected invalid identifier error")
	}
}

func TestFileStoreRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	store := NewFileStore(t.TempDir())
	if err := store.Write(context.Background(), "english", ngram.Profile{"abc": math.NaN()}); err == nil {
		t.Fatalf("expected invalid profile error")
	}
}

func TestFileStoreLanguages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()
	for _, lang := range []string{"spanish", "arabic"} {
		if err := store.Write(ctx, lang, ngram.Profile{"abc": 1}); err != nil {
			t.Fatalf("Write %s failed: %v", lang, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := store.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if want := []string{"arabic", "spanish"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected languages: got %q want %q", got, want)
	}

	missing, err := NewFileStore(filepath.Join(dir, "missing")).Languages(context.Background())
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected no languages for missing dir, got %q (%v)", missing, err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	profile := ngram.Profile{"abc": 1}
	if err := store.Write(ctx, "english", profile); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	profile["abc"] = 0.25

	got, err := store.Read(ctx, "english")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got["abc"] != 1 {
		t.Fatalf("memory store shares the caller's map")
	}
	got["abc"] = 0.5
	again, _ := store.Read(ctx, "english")
	if again["abc"] != 1 {
		t.Fatalf("memory store leaks its internal map")
	}

	if _, err := store.Read(ctx, "german"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type stubProfileRows struct {
	rows    map[string]db.ProfileRow
	upserts []db.UpsertLanguageProfileParams
	getErr  error
}

func (s *stubProfileRows) UpsertLanguageProfile(_ context.Context, row db.UpsertLanguageProfileParams) error {
	s.upserts = append(s.upserts, row)
	if s.rows == nil {
		s.rows = map[string]db.ProfileRow{}
	}
	s.rows[row.Language] = db.ProfileRow{
		Language:     row.Language,
		Trigrams:     row.Trigrams,
		TrigramCount: row.TrigramCount,
	}
	return nil
}

func (s *stubProfileRows) GetLanguageProfile(_ context.Context, language string) (db.ProfileRow, error) {
	if s.getErr != nil {
		return db.ProfileRow{}, s.getErr
	}
	row, ok := s.rows[language]
	if !ok {
		return db.ProfileRow{}, db.ErrNoRows
	}
	return row, nil
}

func (s *stubProfileRows) ListProfileLanguages(_ context.Context) ([]string, error) {
	languages := make([]string, 0, len(s.rows))
	for language := range s.rows {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages, nil
}

func TestStoredLanguages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profile := ngram.FromText("the quick brown fox")

	memory := NewMemoryStore()
	rows := &stubProfileRows{}
	dbStore := newDBStoreWithRows(rows)
	for _, store := range []Store{memory, dbStore} {
		for _, lang := range []string{"german", "english"} {
			if err := store.Write(ctx, lang, profile); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}
		got, ok, err := StoredLanguages(ctx, store)
		if err != nil || !ok {
			t.Fatalf("StoredLanguages failed: ok=%v err=%v", ok, err)
		}
		if want := []string{"english", "german"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected stored languages: got %q want %q", got, want)
		}
	}

	if _, ok, err := StoredLanguages(ctx, readOnlyStore{}); ok || err != nil {
		t.Fatalf("expected non-listing store to report false, got ok=%v err=%v", ok, err)
	}
}

type readOnlyStore struct{}

func (readOnlyStore) Write(context.Context, string, ngram.Profile) error { return nil }

func (readOnlyStore) Read(_ context.Context, lang string) (ngram.Profile, error) {
	return nil, notFound(lang)
}

func TestDBStoreRoundTrip(t *testing.T) {
	t.Parallel()

	rows := &stubProfileRows{}
	store := newDBStoreWithRows(rows)
	ctx := context.Background()
	profile := ngram.FromText("das wetter ist heute sehr schoen")

	if err := store.Write(ctx, "German", profile); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(rows.upserts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(rows.upserts))
	}
	upsert := rows.upserts[0]
	if upsert.Language != "german" || upsert.TrigramCount != profile.Len() {
		t.Fatalf("unexpected upsert params: %+v", upsert)
	}
	var decoded map[string]float64
	if err := json.Unmarshal(upsert.Trigrams, &decoded); err != nil {
		t.Fatalf("upsert payload is not a flat object: %v", err)
	}

	got, err := store.Read(ctx, "german")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, profile) {
		t.Fatalf("round trip changed the profile")
	}
}

func TestDBStoreMissingAndFailingRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := newDBStoreWithRows(&stubProfileRows{}).Read(ctx, "english"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	failing := newDBStoreWithRows(&stubProfileRows{getErr: errors.New("connection reset")})
	_, err := failing.Read(ctx, "english")
	if err == nil || errors.Is(err, ErrNotFound) || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestOpenFileStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, closeStore, err := Open(context.Background(), &config.Config{ProfileStore: config.StoreFile, ProfileDir: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeStore()

	fileStore, ok := store.(*FileStore)
	if !ok {
		t.Fatalf("expected *FileStore, got %T", store)
	}
	if fileStore.Dir != dir {
		t.Fatalf("unexpected dir: %q", fileStore.Dir)
	}

	if _, _, err := Open(context.Background(), &config.Config{ProfileStore: "s3"}); err == nil {
		t.Fatalf("expected error for unsupported store")
	}
}
