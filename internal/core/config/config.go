package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

type Config struct {
	Version  int      `toml:"version"`
	Project  string   `toml:"project"`
	Units    []string `toml:"units"`
	Store    Store    `toml:"store"`
	Watch    Watch    `toml:"watch"`
	Suppress Suppress `toml:"suppress"`
	Metrics  Metrics  `toml:"metrics"`
	Tracing  Tracing  `toml:"tracing"`
}

type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Exclude  []string      `toml:"exclude"`
}

// Suppress drops diagnostics whose originating module path matches a
// glob, e.g. "vendor::**" or "*_generated".
type Suppress struct {
	Modules []string `toml:"modules"`

	matchers []glob.Glob
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Tracing struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateStore(&cfg); err != nil {
		return nil, err
	}
	if err := validateMetrics(&cfg); err != nil {
		return nil, err
	}
	if err := validateTracing(&cfg); err != nil {
		return nil, err
	}
	if err := compileSuppressions(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	_ = compileSuppressions(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Project) == "" {
		cfg.Project = "default"
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = "nameres.db"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Metrics.Address) == "" {
		cfg.Metrics.Address = "127.0.0.1:9920"
	}
	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "127.0.0.1:4317"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	return nil
}

func validateStore(cfg *Config) error {
	if cfg.Store.Enabled && strings.TrimSpace(cfg.Store.Path) == "" {
		return fmt.Errorf("store.path must be set when the store is enabled")
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Address) == "" {
		return fmt.Errorf("metrics.address must be set when metrics are enabled")
	}
	return nil
}

func validateTracing(cfg *Config) error {
	if cfg.Tracing.Enabled && strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		return fmt.Errorf("tracing.endpoint must be set when tracing is enabled")
	}
	return nil
}

func compileSuppressions(cfg *Config) error {
	cfg.Suppress.matchers = cfg.Suppress.matchers[:0]
	for _, pattern := range cfg.Suppress.Modules {
		g, err := glob.Compile(pattern, ':')
		if err != nil {
			return fmt.Errorf("suppress.modules pattern %q: %w", pattern, err)
		}
		cfg.Suppress.matchers = append(cfg.Suppress.matchers, g)
	}
	return nil
}

// Suppressed reports whether diagnostics from the module path should be
// dropped from output.
func (s *Suppress) Suppressed(modulePath string) bool {
	for _, m := range s.matchers {
		if m.Match(modulePath) {
			return true
		}
	}
	return false
}
