// internal/config/config.go
//
// This package handles configuration and the .bachadmin directory structure.
// Every user that runs bachadmin gets a .bachadmin/ folder in their home
// directory holding config, session files, the offline cache and logs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AdminDir is the name of the directory we create in the user's home
	AdminDir = ".bachadmin"

	// DefaultBackendURL is the production backend used when nothing else
	// is configured.
	DefaultBackendURL = "https://baches-yucatan.onrender.com/api"

	// EnvBackendURL overrides the configured backend host.
	EnvBackendURL = "BACHES_BACKEND_URL"

	defaultPageSize       = 100
	defaultRefreshSeconds = 30
	defaultCacheTTLMins   = 15
	defaultCacheEntries   = 500
)

const defaultConfigYAML = `# bachadmin configuration
version: 1

# Backend REST API. May also be set with the BACHES_BACKEND_URL environment
# variable or a .env file in the working directory.
backend_url: ""

# Reports page size sent as ?limit=
page_size: 100

# Dashboard refresh interval in seconds
refresh_seconds: 30

cache:
  enabled: true
  ttl_minutes: 15
  max_entries: 500
`

// CacheConfig controls the offline response cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes"`
	MaxEntries int  `yaml:"max_entries"`
}

// FileConfig models .bachadmin/config.yaml.
type FileConfig struct {
	Version        int         `yaml:"version"`
	BackendURL     string      `yaml:"backend_url"`
	PageSize       int         `yaml:"page_size"`
	RefreshSeconds int         `yaml:"refresh_seconds"`
	Cache          CacheConfig `yaml:"cache"`
}

// Config holds the runtime configuration for bachadmin.
type Config struct {
	// BaseDir is the directory that contains .bachadmin (normally $HOME)
	BaseDir string

	// AdminHome is BaseDir/.bachadmin
	AdminHome string

	File FileConfig

	// envBackend is the BACHES_BACKEND_URL value captured at load time.
	envBackend string
}

// InitAdminDir creates the .bachadmin directory structure in the given base
// directory. Called on startup before anything else touches disk.
//
// Structure created:
// .bachadmin/
// ├── logs/      <- logbook output
// ├── session/   <- persisted login state
// └── cache/     <- offline response cache (versioned subdirs)
func InitAdminDir(baseDir string) error {
	home := filepath.Join(baseDir, AdminDir)
	dirs := []string{
		filepath.Join(home, "logs"),
		filepath.Join(home, "session"),
		filepath.Join(home, "cache"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureConfigFile(filepath.Join(home, "config.yaml"))
}

// New loads configuration from BaseDir/.bachadmin/config.yaml layered under
// the environment. A .env file in the working directory is honored the same
// way the backend's own tooling does.
func New(baseDir string) (*Config, error) {
	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		BaseDir:    baseDir,
		AdminHome:  filepath.Join(baseDir, AdminDir),
		File:       defaultFileConfig(),
		envBackend: strings.TrimSpace(os.Getenv(EnvBackendURL)),
	}
	if err := cfg.loadFileConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BackendURL resolves the backend base URL: environment first, then the
// config file, then the hardcoded production fallback.
func (c *Config) BackendURL() string {
	if c.envBackend != "" {
		return c.envBackend
	}
	if url := strings.TrimSpace(c.File.BackendURL); url != "" {
		return url
	}
	return DefaultBackendURL
}

// PageSize returns the reports page size.
func (c *Config) PageSize() int {
	return c.File.PageSize
}

// RefreshInterval returns the dashboard refresh interval in seconds.
func (c *Config) RefreshInterval() int {
	return c.File.RefreshSeconds
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.AdminHome, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.AdminHome, "logs")
}

// SessionDir returns the directory holding persisted login state.
func (c *Config) SessionDir() string {
	return filepath.Join(c.AdminHome, "session")
}

// CacheDir returns the root directory for the offline response cache.
func (c *Config) CacheDir() string {
	return filepath.Join(c.AdminHome, "cache")
}

// Save persists the file-backed part of the configuration.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.applyDefaults()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.AdminHome, 0o755); err != nil {
		return fmt.Errorf("config: ensure admin dir: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func (c *Config) loadFileConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version:        1,
		PageSize:       defaultPageSize,
		RefreshSeconds: defaultRefreshSeconds,
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: defaultCacheTTLMins,
			MaxEntries: defaultCacheEntries,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.PageSize <= 0 {
		fc.PageSize = defaultPageSize
	}
	if fc.RefreshSeconds <= 0 {
		fc.RefreshSeconds = defaultRefreshSeconds
	}
	if fc.Cache.TTLMinutes <= 0 {
		fc.Cache.TTLMinutes = defaultCacheTTLMins
	}
	if fc.Cache.MaxEntries <= 0 {
		fc.Cache.MaxEntries = defaultCacheEntries
	}
	fc.BackendURL = strings.TrimSpace(fc.BackendURL)
}

func (fc FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if fc.BackendURL != "" && !strings.HasPrefix(fc.BackendURL, "http") {
		return fmt.Errorf("backend_url must be an http(s) URL, got %q", fc.BackendURL)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
