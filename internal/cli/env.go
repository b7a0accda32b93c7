package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar names a .env file that wins over the --env flag.
const EnvFileVar = "LANGID_ENV_FILE"

// ErrEnvNotLoaded is returned when no candidate .env file could be loaded.
var ErrEnvNotLoaded = errors.New("env file not loaded")

// EnvLoader loads .env files with a predictable override order:
// LANGID_ENV_FILE, the --env value, its basename, then the default path.
type EnvLoader struct {
	value       *string
	defaultPath string
	out         io.Writer
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
	}
}

// SetOutput directs load notices to w. Notices go to stderr by default so
// they never mix with command output.
func (l *EnvLoader) SetOutput(w io.Writer) {
	if l != nil {
		l.out = w
	}
}

// Load resolves and loads environment variables and returns the file used.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			l.notef("Loaded environment from %s: %s", EnvFileVar, custom)
			return custom, nil
		}
		l.notef("Warning: failed to load %s=%s", EnvFileVar, custom)
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	for _, candidate := range l.candidates(requested) {
		if err := godotenv.Overload(candidate); err == nil {
			l.notef("Loaded environment from: %s", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrEnvNotLoaded, requested)
}

func (l *EnvLoader) candidates(requested string) []string {
	paths := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		paths = append(paths, base)
	}
	if requested != l.defaultPath {
		paths = append(paths, l.defaultPath)
	}
	return paths
}

func (l *EnvLoader) notef(format string, args ...any) {
	out := l.out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, format+"\n", args...)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
