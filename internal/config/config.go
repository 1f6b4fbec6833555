// Package config loads autoindex settings from YAML or TOML files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/itsmostafa/autoindex/internal/autoindex"
	"github.com/itsmostafa/autoindex/internal/index"
	"github.com/itsmostafa/autoindex/internal/terms"
)

// Defaults for unset fields.
const (
	// DefaultDebounce is how long watch mode waits for writes to settle.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultScanMask selects C and C++ sources when a scan names a directory.
	DefaultScanMask = `.*\.(h|hh|hpp|hxx|ipp|c|cc|cpp|cxx)`
)

// Config is the on-disk run configuration. Command-line flags override it.
type Config struct {
	Input   string   `yaml:"input" toml:"input"`
	Output  string   `yaml:"output" toml:"output"`
	Scripts []string `yaml:"scripts" toml:"scripts"`
	// Scans lists source files, or directories searched recursively for
	// files matching ScanMask.
	Scans    []string `yaml:"scans" toml:"scans"`
	ScanMask string   `yaml:"scan_mask" toml:"scan_mask"`

	BasePath      string `yaml:"base_path" toml:"base_path"`
	NoDuplicates  bool   `yaml:"no_duplicates" toml:"no_duplicates"`
	InternalIndex bool   `yaml:"internal_index" toml:"internal_index"`
	Verbose       bool   `yaml:"verbose" toml:"verbose"`

	IndexTitle   string `yaml:"index_title" toml:"index_title"`
	AnchorPrefix string `yaml:"anchor_prefix" toml:"anchor_prefix"`

	// CategoryPatterns is keyed by class, function or typedef.
	CategoryPatterns map[string]CategoryPattern `yaml:"category_patterns" toml:"category_patterns"`

	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// CategoryPattern wraps harvested names of one kind.
type CategoryPattern struct {
	Prefix string `yaml:"prefix" toml:"prefix"`
	Suffix string `yaml:"suffix" toml:"suffix"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file. The format is chosen by extension:
// .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .toml)", ext)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.IndexTitle == "" {
		c.IndexTitle = index.DefaultTitle
	}
	if c.AnchorPrefix == "" {
		c.AnchorPrefix = index.DefaultAnchorPrefix
	}
	if c.ScanMask == "" {
		c.ScanMask = DefaultScanMask
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
}

// Indexer converts c into the options of an indexing run.
func (c *Config) Indexer(logger *slog.Logger) autoindex.Config {
	var patterns map[string]terms.Template
	if len(c.CategoryPatterns) > 0 {
		patterns = make(map[string]terms.Template, len(c.CategoryPatterns))
		for kind, p := range c.CategoryPatterns {
			patterns[kind] = terms.Template{Prefix: p.Prefix, Suffix: p.Suffix}
		}
	}
	return autoindex.Config{
		NoDuplicates:     c.NoDuplicates,
		InternalIndex:    c.InternalIndex,
		BasePath:         c.BasePath,
		IndexTitle:       c.IndexTitle,
		AnchorPrefix:     c.AnchorPrefix,
		CategoryPatterns: patterns,
		Logger:           logger,
	}
}
