// Package config loads .reindent.toml and turns it into the registries and
// defaults used by the dispatcher and the file driver.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"reindent/internal/adapter"
	"reindent/internal/indent"
	"reindent/internal/lang"
	"reindent/internal/rules"
)

// FileName is the configuration file looked up from the working directory.
const FileName = ".reindent.toml"

type fileConfig struct {
	Indent    indentConfig      `toml:"indent"`
	Languages map[string]string `toml:"languages"`
	Adapters  map[string]bool   `toml:"adapters"`
	Rules     []ruleConfig      `toml:"rules"`
}

type indentConfig struct {
	Style string `toml:"style"`
	Width int64  `toml:"width"`
}

type ruleConfig struct {
	Name       string   `toml:"name"`
	Extensions []string `toml:"extensions"`
	Increase   []string `toml:"increase"`
	Decrease   []string `toml:"decrease"`
}

// Config is the resolved configuration.
type Config struct {
	Path       string // empty when no file was loaded
	Digest     string // hex SHA-256 of the loaded file, empty for defaults
	Unit       indent.Unit
	Extensions lang.ExtensionMap
	Adapters   *adapter.Registry
	Rules      *rules.Registry
}

// Default returns the builtin configuration.
func Default() *Config {
	return &Config{
		Unit:       indent.SpacesUnit(indent.DefaultWidth),
		Extensions: lang.DefaultExtensions(),
		Adapters:   adapter.DefaultRegistry(),
		Rules:      rules.DefaultRegistry(),
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads explicit if set, otherwise the nearest FileName above
// startDir, otherwise the defaults.
func Discover(startDir, explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and applies the file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var fc fileConfig
	meta, err := toml.Decode(string(data), &fc)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg := Default()
	cfg.Path = path
	sum := sha256.Sum256(data)
	cfg.Digest = hex.EncodeToString(sum[:])
	if err := cfg.apply(&fc, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(fc *fileConfig, meta toml.MetaData) error {
	if meta.IsDefined("indent", "style") {
		kind, err := indent.ParseKind(fc.Indent.Style)
		if err != nil {
			return fmt.Errorf("[indent].style: %w", err)
		}
		c.Unit.Kind = kind
		if kind == indent.Tab {
			c.Unit.Width = 1
		}
	}
	if meta.IsDefined("indent", "width") {
		width, err := safecast.Conv[int](fc.Indent.Width)
		if err != nil {
			return fmt.Errorf("[indent].width: %w", err)
		}
		if c.Unit.Kind == indent.Spaces {
			c.Unit.Width = width
		}
	}
	if err := c.Unit.Validate(); err != nil {
		return fmt.Errorf("[indent]: %w", err)
	}

	for ext, name := range fc.Languages {
		l := lang.Parse(name)
		if l == lang.Other && strings.TrimSpace(name) == "" {
			return fmt.Errorf("[languages].%q: empty language", ext)
		}
		c.Extensions.Set(ext, l)
	}

	for name, enabled := range fc.Adapters {
		l := lang.Parse(name)
		if _, ok := c.Adapters.Lookup(l); !ok && enabled {
			return fmt.Errorf("[adapters].%s: no structured formatter for %q", name, name)
		}
		if !enabled {
			c.Adapters.Register(l, nil)
		}
	}

	for i, rc := range fc.Rules {
		if strings.TrimSpace(rc.Name) == "" {
			return fmt.Errorf("[[rules]] #%d: missing name", i+1)
		}
		l := lang.Parse(rc.Name)
		rs, err := rules.Declare(l.String(), rc.Increase, rc.Decrease)
		if err != nil {
			return fmt.Errorf("[[rules]] #%d: %w", i+1, err)
		}
		c.Rules.Register(l, rs)
		for _, ext := range rc.Extensions {
			c.Extensions.Set(ext, l)
		}
	}
	return nil
}
