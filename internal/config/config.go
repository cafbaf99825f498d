// Package config handles configuration loading and dm home resolution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-ports/dm/internal/fsutil"
)

// HomeEnv names the environment variable that overrides the dm home directory.
const HomeEnv = "DM_HOME"

// ErrMalformedGlobal is returned when the global config file exists but
// cannot be decoded.
var ErrMalformedGlobal = errors.New("malformed global config")

// FileName is the per-home configuration file name.
const FileName = "config.yaml"

// Supported storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// Config is the per-home configuration.
type Config struct {
	Backend        string `yaml:"backend"`         // "json" | "sqlite"
	RecoverCorrupt bool   `yaml:"recover_corrupt"` // back up and reset an unreadable store
	LogLevel       string `yaml:"log_level"`       // "debug" | "info" | "warn" | "error"
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Backend:        BackendJSON,
		RecoverCorrupt: false,
		LogLevel:       "warn",
	}
}

// Load reads a per-home config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}

	if v, ok := raw["backend"].(string); ok && v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v, ok := raw["recover_corrupt"].(bool); ok {
		cfg.RecoverCorrupt = v
	}
	if v, ok := raw["log_level"].(string); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendJSON, BackendSQLite)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global dm config file.
// It holds dm_home; other keys are preserved when it is rewritten.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dm", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveHome returns the dm home path and the source of the resolution.
// Priority: DM_HOME env → persisted global config → ~/.dm
// source is one of "env", "config", or "default".
// A global config that cannot be parsed is an error rather than a silent
// fall back to ~/.dm.
func ResolveHome() (path, source string, err error) {
	if env := os.Getenv(HomeEnv); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env", nil
		}
	}

	persisted, ok, err := GetPersistedHome()
	if err != nil {
		return "", "", fmt.Errorf("config.ResolveHome: %w", err)
	}
	if ok {
		return persisted, "config", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("config.ResolveHome: %w", err)
	}
	return filepath.Join(home, ".dm"), "default", nil
}

// ---------------------------------------------------------------------------
// Global config (~/.config/dm/config.yaml)
// ---------------------------------------------------------------------------

const homeKey = "dm_home"

// globalFile is the decoded global config. Keys other than dm_home are kept
// so rewriting the file never drops settings dm does not know about.
type globalFile struct {
	path string
	keys map[string]any
}

func readGlobal() (*globalFile, error) {
	path, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	g := &globalFile{path: path, keys: make(map[string]any)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return g, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &g.keys); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedGlobal, path, err)
	}
	if g.keys == nil {
		g.keys = make(map[string]any)
	}
	return g, nil
}

// home returns the normalized dm_home value, if one is set.
func (g *globalFile) home() (string, bool, error) {
	raw, present := g.keys[homeKey]
	if !present {
		return "", false, nil
	}
	val, isString := raw.(string)
	if !isString {
		return "", false, fmt.Errorf("%w %s: %s must be a string, got %T", ErrMalformedGlobal, g.path, homeKey, raw)
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}
	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// save writes the file atomically, or removes it once no keys remain.
func (g *globalFile) save() error {
	if len(g.keys) == 0 {
		if err := os.Remove(g.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	out, err := yaml.Marshal(g.keys)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(g.path, out, 0o600)
}

// GetPersistedHome reads dm_home from the global config.
// Returns ("", false, nil) if not set, and an error wrapping
// ErrMalformedGlobal if the file cannot be parsed.
func GetPersistedHome() (string, bool, error) {
	g, err := readGlobal()
	if err != nil {
		return "", false, fmt.Errorf("config.GetPersistedHome: %w", err)
	}
	p, ok, err := g.home()
	if err != nil {
		return "", false, fmt.Errorf("config.GetPersistedHome: %w", err)
	}
	return p, ok, nil
}

// SetPersistedHome normalizes path and persists it in the global config,
// returning the normalized path. A malformed global config is left as is
// and reported.
func SetPersistedHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("config.SetPersistedHome: %w", err)
	}
	g, err := readGlobal()
	if err != nil {
		return "", fmt.Errorf("config.SetPersistedHome: %w", err)
	}
	if prev, ok, _ := g.home(); ok && prev != normalized {
		slog.Info("replacing persisted dm home", "old", prev, "new", normalized)
	}
	g.keys[homeKey] = normalized
	if err := g.save(); err != nil {
		return "", fmt.Errorf("config.SetPersistedHome: %w", err)
	}
	return normalized, nil
}

// ClearPersistedHome removes dm_home from the global config and reports
// whether it was present. The file is deleted when nothing else remains.
func ClearPersistedHome() (bool, error) {
	g, err := readGlobal()
	if err != nil {
		return false, fmt.Errorf("config.ClearPersistedHome: %w", err)
	}
	if _, ok := g.keys[homeKey]; !ok {
		return false, nil
	}
	delete(g.keys, homeKey)
	if err := g.save(); err != nil {
		return false, fmt.Errorf("config.ClearPersistedHome: %w", err)
	}
	return true, nil
}
