// Package config loads funski.yaml and holds the constants shared by the
// engine, the CLI and the RPC server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level funski.yaml configuration.
type Config struct {
	// DisplayStyle selects how terms are rendered: "lazy_k" or "ecmascript".
	DisplayStyle string `yaml:"display_style,omitempty"`

	// StepLimit bounds the number of reductions performed by the bulk
	// evaluation commands. Defaults to DefaultStepLimit.
	StepLimit int `yaml:"step_limit,omitempty"`

	History History `yaml:"history,omitempty"`
	Server  Server  `yaml:"server,omitempty"`
	Basis   Basis   `yaml:"basis,omitempty"`

	// Prelude lists definition commands run before the history is replayed,
	// e.g. "```sxyz = ``xz`yz".
	Prelude []string `yaml:"prelude,omitempty"`
}

// History configures where definitions are persisted.
type History struct {
	// Driver is "sqlite", "yaml" or "memory".
	Driver string `yaml:"driver,omitempty"`

	// Path of the database or YAML file. A leading ~ is expanded to the
	// home directory. Ignored by the memory driver.
	Path string `yaml:"path,omitempty"`
}

type Server struct {
	Addr string `yaml:"addr,omitempty"`

	// RateLimit caps requests per second across all clients. Zero disables it.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
}

// Basis names the combinators produced by the unlambda commands.
type Basis struct {
	S    string `yaml:"s,omitempty"`
	K    string `yaml:"k,omitempty"`
	I    string `yaml:"i,omitempty"`
	Iota string `yaml:"iota,omitempty"`
}

// Default returns the configuration used when no funski.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a funski.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses funski.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for funski.yaml starting from dir and walking up to
// parent directories. Returns an empty string and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	switch c.DisplayStyle {
	case "", StyleLazyK, StyleECMAScript:
	default:
		return fmt.Errorf("%s: display_style: unknown style %q (want %s or %s)",
			path, c.DisplayStyle, StyleLazyK, StyleECMAScript)
	}

	if c.StepLimit < 0 {
		return fmt.Errorf("%s: step_limit must not be negative", path)
	}

	switch c.History.Driver {
	case "", DriverSQLite, DriverYAML:
	case DriverMemory:
		if c.History.Path != "" {
			return fmt.Errorf("%s: history.path is not used by the memory driver", path)
		}
	default:
		return fmt.Errorf("%s: history.driver: unknown driver %q", path, c.History.Driver)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%s: server.rate_limit must not be negative", path)
	}

	seen := make(map[string]string)
	for _, b := range []struct{ field, name string }{
		{"s", c.Basis.S}, {"k", c.Basis.K}, {"i", c.Basis.I}, {"iota", c.Basis.Iota},
	} {
		if b.name == "" {
			continue
		}
		if strings.ContainsAny(b.name, " \t`.=:") {
			return fmt.Errorf("%s: basis.%s: %q is not an identifier", path, b.field, b.name)
		}
		if other, ok := seen[b.name]; ok {
			return fmt.Errorf("%s: basis.%s: %q already used by basis.%s", path, b.field, b.name, other)
		}
		seen[b.name] = b.field
	}

	for i, line := range c.Prelude {
		if strings.TrimSpace(line) == "" {
			return fmt.Errorf("%s: prelude[%d]: empty command", path, i)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.DisplayStyle == "" {
		c.DisplayStyle = StyleLazyK
	}
	if c.StepLimit == 0 {
		c.StepLimit = DefaultStepLimit
	}
	if c.History.Driver == "" {
		c.History.Driver = DriverSQLite
	}
	if c.History.Path == "" {
		switch c.History.Driver {
		case DriverSQLite:
			c.History.Path = filepath.Join("~", DataDir, HistoryDBFile)
		case DriverYAML:
			c.History.Path = filepath.Join("~", DataDir, HistoryYAMLFile)
		}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Basis.S == "" {
		c.Basis.S = "s"
	}
	if c.Basis.K == "" {
		c.Basis.K = "k"
	}
	if c.Basis.I == "" {
		c.Basis.I = "i"
	}
	if c.Basis.Iota == "" {
		c.Basis.Iota = "ι"
	}
}

// ExpandHome replaces a leading ~ in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}
