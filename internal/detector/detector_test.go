package detector

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/langid/internal/builder"
	"horse.fit/langid/internal/corpus"
	"horse.fit/langid/internal/ngram"
	"horse.fit/langid/internal/profilestore"
)

const englishQuery = "the quick brown fox jumps over the lazy dog and runs away"

func trainedStore(t *testing.T) *profilestore.MemoryStore {
	t.Helper()

	source := corpus.MemorySource{
		"english": {
			"the quick brown fox jumps over the lazy dog",
			"she sells seashells by the seashore",
		},
		"german": {
			"der schnelle braune fuchs springt",
			"das wetter ist heute sehr schoen",
		},
	}
	store := profilestore.NewMemoryStore()
	report := builder.New(source, store, zerolog.Nop(), builder.Options{}).
		BuildProfiles(context.Background(), []string{"english", "german"})
	if report.Count(builder.StatusBuilt) != 2 {
		t.Fatalf("expected both profiles to build, got %+v", report.Outcomes)
	}
	return store
}

func trainedDetector(t *testing.T) *Detector {
	t.Helper()

	set, _ := Load(context.Background(), trainedStore(t), []string{"english", "german"}, zerolog.Nop())
	return New(set)
}

func TestDetectEnglishEndToEnd(t *testing.T) {
	t.Parallel()

	d := trainedDetector(t)
	result := d.Detect(englishQuery)
	if result.Language != "english" {
		t.Fatalf("unexpected language: got %q want english", result.Language)
	}
	if result.Method != Method {
		t.Fatalf("unexpected method: %q", result.Method)
	}
	if result.Confidence <= 50 {
		t.Fatalf("expected confidence above 50, got %d", result.Confidence)
	}

	scores := d.Rank(englishQuery)
	if len(scores) != 2 || scores[0].Language != "english" || scores[1].Language != "german" {
		t.Fatalf("unexpected ranking: %+v", scores)
	}
	if scores[0].Similarity <= scores[1].Similarity {
		t.Fatalf("expected english similarity above german: %+v", scores)
	}
}

func TestDetectShortInputIsUnknown(t *testing.T) {
	t.Parallel()

	d := trainedDetector(t)
	for _, text := range []string{"", "ab", "123456789", "ёёёёёёёёё"} {
		if got := d.Detect(text); got != Unknown() {
			t.Fatalf("Detect(%q): got %+v want %+v", text, got, Unknown())
		}
	}

	want := Result{Language: "unknown", Confidence: 0, Method: "ngram"}
	if got := d.Detect("ab"); got != want {
		t.Fatalf("unexpected result for short input: %+v", got)
	}
}

func TestDetectEmptyProfileSetIsUnknown(t *testing.T) {
	t.Parallel()

	for _, d := range []*Detector{New(nil), New(NewProfileSet(nil)), {}} {
		if got := d.Detect(englishQuery); got != Unknown() {
			t.Fatalf("unexpected result with no profiles: %+v", got)
		}
		if got := d.Rank(englishQuery); len(got) != 0 {
			t.Fatalf("unexpected ranking with no profiles: %+v", got)
		}
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	t.Parallel()

	d := trainedDetector(t)
	first := d.Detect(englishQuery)
	firstScores := d.Rank(englishQuery)
	for i := 0; i < 20; i++ {
		if got := d.Detect(englishQuery); got != first {
			t.Fatalf("repeated detection changed: %+v vs %+v", got, first)
		}
		if got := d.Rank(englishQuery); !reflect.DeepEqual(got, firstScores) {
			t.Fatalf("repeated ranking changed: %+v vs %+v", got, firstScores)
		}
	}
}

func TestDetectTieGoesToAlphabeticallyFirstLanguage(t *testing.T) {
	t.Parallel()

	profile := ngram.FromText("identical training text")
	set := NewProfileSet(map[string]ngram.Profile{
		"zulu":    profile,
		"english": profile,
		"malay":   profile,
	})
	d := New(set)

	for i := 0; i < 20; i++ {
		got := d.Detect("identical training text")
		if got.Language != "english" {
			t.Fatalf("unexpected tie winner: %q", got.Language)
		}
		if got.Confidence != 100 {
			t.Fatalf("unexpected confidence for identical text: %d", got.Confidence)
		}
	}

	scores := d.Rank("identical training text")
	var order []string
	for _, score := range scores {
		order = append(order, score.Language)
	}
	if want := []string{"english", "malay", "zulu"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("unexpected tie ordering: got %q want %q", order, want)
	}
}

func TestDetectDisjointProfilesGiveZeroConfidence(t *testing.T) {
	t.Parallel()

	d := New(NewProfileSet(map[string]ngram.Profile{"xenon": {"xyz": 1}}))
	got := d.Detect("the quick brown fox")
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %+v", got)
	}
}

func TestNewProfileSetDropsUnusableProfiles(t *testing.T) {
	t.Parallel()

	source := map[string]ngram.Profile{
		"English": {"the": 1},
		"empty":   {},
		"zeroes":  {"abc": 0},
		"bad/id":  {"abc": 1},
		"broken":  {"abc": 2},
	}
	set := NewProfileSet(source)
	if got := set.Languages(); !reflect.DeepEqual(got, []string{"english"}) {
		t.Fatalf("unexpected languages: %q", got)
	}

	source["English"]["the"] = 0.5
	if set.profiles["english"]["the"] != 1 {
		t.Fatalf("profile set shares the caller's map")
	}
	if set.TrigramCount("english") != 1 || set.TrigramCount("missing") != 0 {
		t.Fatalf("unexpected trigram counts")
	}
}

type erroringStore struct {
	profilestore.Store
	failFor string
}

func (s erroringStore) Read(ctx context.Context, lang string) (ngram.Profile, error) {
	if lang == s.failFor {
		return nil, errors.New("schema validation failed")
	}
	return s.Store.Read(ctx, lang)
}

func TestLoadReportsPerLanguageOutcomes(t *testing.T) {
	t.Parallel()

	store := erroringStore{Store: trainedStore(t), failFor: "german"}
	set, outcomes := Load(context.Background(), store, []string{"english", "german", "arabic"}, zerolog.Nop())

	if got := set.Languages(); !reflect.DeepEqual(got, []string{"english"}) {
		t.Fatalf("unexpected loaded languages: %q", got)
	}

	want := map[string]LoadStatus{
		"english": LoadStatusLoaded,
		"german":  LoadStatusFailed,
		"arabic":  LoadStatusSkipped,
	}
	if len(outcomes) != len(want) {
		t.Fatalf("unexpected outcome count: %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		if outcome.Status != want[outcome.Language] {
			t.Fatalf("unexpected status for %s: got %s want %s", outcome.Language, outcome.Status, want[outcome.Language])
		}
	}
	if outcomes[1].Reason != "schema validation failed" {
		t.Fatalf("unexpected failure reason: %q", outcomes[1].Reason)
	}
	if outcomes[0].Trigrams == 0 {
		t.Fatalf("expected trigram count for loaded language")
	}
}

func TestLoadFailsZeroMagnitudeProfile(t *testing.T) {
	t.Parallel()

	store := profilestore.NewFileStore(t.TempDir())
	if err := os.WriteFile(store.Path("english"), []byte(`{"abc": 0}`), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	set, outcomes := Load(context.Background(), store, []string{"english"}, zerolog.Nop())
	if set.Len() != 0 {
		t.Fatalf("unexpected loaded languages: %q", set.Languages())
	}
	if len(outcomes) != 1 {
		t.Fatalf("unexpected outcome count: %d", len(outcomes))
	}
	got := outcomes[0]
	if got.Status != LoadStatusFailed || got.Reason != "profile has zero magnitude" || got.Trigrams != 0 {
		t.Fatalf("unexpected outcome: %+v", got)
	}
}

func TestNewProfileSetKeepsFirstSortedDuplicate(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		set := NewProfileSet(map[string]ngram.Profile{
			"english":  {"abc": 1},
			"English":  {"the": 1},
			" english": {"xyz": 1},
		})
		if got := set.Languages(); !reflect.DeepEqual(got, []string{"english"}) {
			t.Fatalf("unexpected languages: %q", got)
		}
		if _, ok := set.profiles["english"]["xyz"]; !ok {
			t.Fatalf("unexpected profile kept: %v", set.profiles["english"])
		}
	}
}

func TestDetectWithScoresMatchesDetectAndRank(t *testing.T) {
	t.Parallel()

	d := trainedDetector(t)
	result, scores := d.DetectWithScores(englishQuery)
	if result != d.Detect(englishQuery) {
		t.Fatalf("unexpected result: got %+v want %+v", result, d.Detect(englishQuery))
	}
	if !reflect.DeepEqual(scores, d.Rank(englishQuery)) {
		t.Fatalf("unexpected scores: %+v", scores)
	}
	if len(scores) != 2 || scores[0].Language != result.Language {
		t.Fatalf("ranking does not lead with the result: %+v", scores)
	}

	short, shortScores := d.DetectWithScores("hi there")
	if short != Unknown() || len(shortScores) != 0 {
		t.Fatalf("unexpected short input result: %+v %+v", short, shortScores)
	}

	empty, emptyScores := New(nil).DetectWithScores(englishQuery)
	if empty != Unknown() || len(emptyScores) != 0 {
		t.Fatalf("unexpected empty set result: %+v %+v", empty, emptyScores)
	}
}

func TestLoadWithoutStore(t *testing.T) {
	t.Parallel()

	set, outcomes := Load(context.Background(), nil, []string{"english"}, zerolog.Nop())
	if set.Len() != 0 {
		t.Fatalf("expected empty set")
	}
	if len(outcomes) != 1 || outcomes[0].Status != LoadStatusFailed {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
}

func TestReloadSwapsWholeSet(t *testing.T) {
	t.Parallel()

	store := profilestore.NewMemoryStore()
	d := New(nil)
	if got := d.Detect(englishQuery); got != Unknown() {
		t.Fatalf("expected unknown before reload, got %+v", got)
	}

	ctx := context.Background()
	if err := store.Write(ctx, "english", ngram.FromText("the quick brown fox jumps over the lazy dog")); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	before := d.Profiles()
	outcomes := d.Reload(ctx, store, []string{"english"}, zerolog.Nop())
	if len(outcomes) != 1 || outcomes[0].Status != LoadStatusLoaded {
		t.Fatalf("unexpected reload outcomes: %+v", outcomes)
	}
	if before.Len() != 0 {
		t.Fatalf("reload mutated the previous snapshot")
	}
	if got := d.Detect(englishQuery); got.Language != "english" {
		t.Fatalf("expected english after reload, got %+v", got)
	}
}

func TestConcurrentDetectDuringSwap(t *testing.T) {
	t.Parallel()

	d := trainedDetector(t)
	trained := d.Profiles()
	want := d.Detect(englishQuery)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got := d.Detect(englishQuery)
				if got != want && got != Unknown() {
					t.Errorf("inconsistent detection during swap: %+v", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		d.Swap(NewProfileSet(nil))
		d.Swap(trained)
	}
	wg.Wait()
}

func TestConfidenceRoundsAndClamps(t *testing.T) {
	t.Parallel()

	cases := map[float64]int{
		-0.2:   0,
		0:      0,
		0.004:  0,
		0.005:  1,
		0.6285: 63,
		0.996:  100,
		1.3:    100,
	}
	for similarity, want := range cases {
		if got := confidence(similarity); got != want {
			t.Fatalf("confidence(%v): got %d want %d", similarity, got, want)
		}
	}
}
