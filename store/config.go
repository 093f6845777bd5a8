package store

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SourceConfig describes one registered safety source. Only sources
// listed in the configuration may push data.
type SourceConfig struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

// GroupConfig is a group of sources shown together as one entry group.
type GroupConfig struct {
	ID      string         `yaml:"id"`
	Title   string         `yaml:"title"`
	Summary string         `yaml:"summary"`
	Sources []SourceConfig `yaml:"sources"`
}

// StaticConfig is an informational entry with no backing source.
type StaticConfig struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

// Config is the safety center source registry, typically loaded from
// a YAML file.
type Config struct {
	Groups []GroupConfig  `yaml:"groups"`
	Static []StaticConfig `yaml:"static"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	var ret Config
	b, err := os.ReadFile(path)
	if err != nil {
		return ret, err
	}
	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, fmt.Errorf("parsing %v: %w", path, err)
	}
	return ret, ret.Validate()
}

// Validate checks for duplicate or empty IDs.
func (c Config) Validate() error {
	seen := make(map[string]bool)
	for _, g := range c.Groups {
		if g.ID == "" {
			return fmt.Errorf("group with empty ID")
		}
		for _, s := range g.Sources {
			if s.ID == "" {
				return fmt.Errorf("source with empty ID in group %v", g.ID)
			}
			if seen[s.ID] {
				return fmt.Errorf("duplicate source ID: %v", s.ID)
			}
			seen[s.ID] = true
		}
	}
	return nil
}

// Sources returns all source configs across groups.
func (c Config) Sources() []SourceConfig {
	var ret []SourceConfig
	for _, g := range c.Groups {
		ret = append(ret, g.Sources...)
	}
	return ret
}

// Source looks up a source config by ID.
func (c Config) Source(id string) (SourceConfig, bool) {
	for _, g := range c.Groups {
		for _, s := range g.Sources {
			if s.ID == id {
				return s, true
			}
		}
	}
	return SourceConfig{}, false
}
