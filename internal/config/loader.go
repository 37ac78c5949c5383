package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "preprint"
	// ConfigFile is the user-level config file name
	ConfigFile = "config.json"
	// ProjectFile is the per-manuscript config file written by `preprint init`
	ProjectFile = "preprint.json"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ParseError is returned when a config file is not valid JSON or does not fit the schema.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// OverrideError is returned for a malformed or unknown -set override.
type OverrideError struct {
	Override string
	Cause    error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("invalid override %q: %v", e.Override, e.Cause)
}

func (e *OverrideError) Unwrap() error { return e.Cause }

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs         FileSystem
	projectDir string
}

// NewLoader creates a production Loader reading preprint.json from projectDir.
func NewLoader(projectDir string) *Loader {
	return &Loader{fs: ConfigFileReader{}, projectDir: projectDir}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem, projectDir string) *Loader {
	return &Loader{fs: fs, projectDir: projectDir}
}

// Load merges defaults, ~/.config/preprint/config.json, <projectDir>/preprint.json
// and the key=value overrides, then validates the result.
// Missing files are skipped. Parse errors, permission problems and validation
// failures are returned.
func (l *Loader) Load(overrides ...string) (*Config, error) {
	cfg := DefaultConfig()

	var paths []string
	if homeDir, err := l.fs.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", ConfigDir, ConfigFile))
	}
	paths = append(paths, filepath.Join(l.projectDir, ProjectFile))

	for _, path := range paths {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
		if err := decode(cfg, raw, false); err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
	}

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyOverrides decodes dotted key=value pairs (e.g. pack.max_size_mb=3) over cfg.
func applyOverrides(cfg *Config, overrides []string) error {
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return &OverrideError{Override: o, Cause: fmt.Errorf("expected key=value")}
		}

		parts := strings.Split(key, ".")
		raw := map[string]any{parts[len(parts)-1]: value}
		for i := len(parts) - 2; i >= 0; i-- {
			raw = map[string]any{parts[i]: raw}
		}

		if err := decode(cfg, raw, true); err != nil {
			return &OverrideError{Override: o, Cause: err}
		}
	}
	return nil
}

// decode writes raw over cfg. Keys absent from raw keep their current values;
// lists present in raw replace the current list instead of merging into it.
func decode(cfg *Config, raw map[string]any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ZeroFields:       true,
		ErrorUnused:      strict,
		DecodeHook:       splitListHook,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// splitListHook lets a comma separated string stand in for a list, so
// "exts": "tex, pdf" and -set exts=tex,pdf both work.
func splitListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	if s == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
