package langdetect

import (
	"reflect"
	"testing"

	"horse.fit/langid/internal/language"
)

func TestNewLinguaMapsSupportedLanguages(t *testing.T) {
	t.Parallel()

	l, err := NewLingua(language.Supported)
	if err != nil {
		t.Fatalf("NewLingua failed: %v", err)
	}
	if got := l.Languages(); !reflect.DeepEqual(got, language.Supported) {
		t.Fatalf("unexpected languages: got %q want %q", got, language.Supported)
	}
}

func TestNewLinguaRejectsUnknownAndTooFewLanguages(t *testing.T) {
	t.Parallel()

	if _, err := NewLingua([]string{"english", "klingon"}); err == nil {
		t.Fatalf("expected error for unsupported language")
	}
	if _, err := NewLingua([]string{"english"}); err == nil {
		t.Fatalf("expected error for a single language")
	}
}

func TestLinguaShortTextIsUnknown(t *testing.T) {
	t.Parallel()

	l, err := NewLingua([]string{"english", "german"})
	if err != nil {
		t.Fatalf("NewLingua failed: %v", err)
	}
	got := l.Detect("   hi   ")
	if got.Language != language.Unknown || got.Confidence != 0 || got.Method != Method {
		t.Fatalf("unexpected result for short text: %+v", got)
	}
}

func TestLinguaDetectsGerman(t *testing.T) {
	t.Parallel()

	l, err := NewLingua([]string{"english", "german"})
	if err != nil {
		t.Fatalf("NewLingua failed: %v", err)
	}
	got := l.Detect("Das Wetter ist heute sehr schön und die Sonne scheint über der Stadt")
	if got.Language != "german" {
		t.Fatalf("unexpected language: %+v", got)
	}
	if got.Confidence <= 0 || got.Confidence > 100 {
		t.Fatalf("unexpected confidence: %d", got.Confidence)
	}
}
