// Package config handles graft.toml compiler configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full graft.toml configuration.
type Config struct {
	Compiler Compiler `toml:"compiler"`
	Dump     Dump     `toml:"dump"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the graft.toml file (set at load
	// time).
	Dir string `toml:"-"`
}

// Compiler configures parsing and inlining policy.
type Compiler struct {
	HotThreshold    uint64 `toml:"hot-threshold"`
	MaxInlineDepth  int    `toml:"max-inline-depth"`
	InlineCodeLimit int    `toml:"inline-code-limit"`
	EagerResolving  bool   `toml:"eager-resolving"`
}

// Dump configures graph dump output.
type Dump struct {
	Output string `toml:"output"` // directory for dump files, "" disables
	Format string `toml:"format"` // "cbor" or "text"
}

// Log configures logging.
type Log struct {
	Verbosity int `toml:"verbosity"`
}

// Default returns the configuration used when no graft.toml exists.
func Default() *Config {
	return &Config{
		Compiler: Compiler{
			HotThreshold:    100,
			MaxInlineDepth:  5,
			InlineCodeLimit: 64,
		},
		Dump: Dump{Format: "text"},
	}
}

// Load parses a graft.toml file from the given directory. Fields absent
// from the file keep their defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "graft.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Dir = dir

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Compiler.MaxInlineDepth < 0 {
		return fmt.Errorf("compiler.max-inline-depth must not be negative")
	}
	if c.Compiler.InlineCodeLimit < 0 {
		return fmt.Errorf("compiler.inline-code-limit must not be negative")
	}
	switch c.Dump.Format {
	case "", "cbor", "text":
	default:
		return fmt.Errorf("dump.format must be \"cbor\" or \"text\", got %q", c.Dump.Format)
	}
	return nil
}
