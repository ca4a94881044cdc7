package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigRegistry holds the validated entries of a publishers file. It is read-only after LoadRegistry.
type ConfigRegistry struct {
	entries []PublisherConfig
	byID    map[string]int
}

// LoadRegistry reads a publishers file. .json files are decoded as JSON, anything else as YAML.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file %s: %w", filepath.Base(path), err)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{byID: make(map[string]int, len(file.Publishers))}
	for i, entry := range file.Publishers {
		cfg := normalizePublisherConfig(entry)
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.byID[cfg.ID] = len(reg.entries)
		reg.entries = append(reg.entries, cfg)
	}
	return reg, nil
}

func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.entries[i], true
}

// All returns a copy of every entry in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.entries...)
}

// Enabled returns the entries that should be built for this run.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range r.entries {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
