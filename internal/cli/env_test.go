package cli

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvLoaderLoadsRequestedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "langid.env")
	if err := os.WriteFile(path, []byte("LANGID_TEST_PROFILE_DIR=/srv/profiles\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	t.Setenv("LANGID_ENV_FILE", "")
	t.Setenv("LANGID_TEST_PROFILE_DIR", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	var notices bytes.Buffer
	loader.SetOutput(&notices)
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: got %q want %q", loaded, path)
	}
	if got := os.Getenv("LANGID_TEST_PROFILE_DIR"); got != "/srv/profiles" {
		t.Fatalf("unexpected env value: %q", got)
	}
	if !bytes.Contains(notices.Bytes(), []byte(path)) {
		t.Fatalf("unexpected notices: %q", notices.String())
	}
}

func TestEnvLoaderPrefersEnvFileVar(t *testing.T) {
	dir := t.TempDir()
	preferred := filepath.Join(dir, "preferred.env")
	if err := os.WriteFile(preferred, []byte("LANGID_TEST_STORE=postgres\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	t.Setenv(EnvFileVar, preferred)
	t.Setenv("LANGID_TEST_STORE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(dir, "missing.env"), "")
	loader.SetOutput(&bytes.Buffer{})
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != preferred {
		t.Fatalf("unexpected loaded path: got %q want %q", loaded, preferred)
	}
	if got := os.Getenv("LANGID_TEST_STORE"); got != "postgres" {
		t.Fatalf("unexpected env value: %q", got)
	}
}

func TestEnvLoaderReportsMissingFile(t *testing.T) {
	t.Setenv("LANGID_ENV_FILE", "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(t.TempDir(), "missing.env"), "")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	loader.SetOutput(&bytes.Buffer{})
	if _, err := loader.Load(); !errors.Is(err, ErrEnvNotLoaded) {
		t.Fatalf("unexpected error: got %v want %v", err, ErrEnvNotLoaded)
	}
}

func TestNilEnvLoader(t *testing.T) {
	t.Parallel()

	var loader *EnvLoader
	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}
