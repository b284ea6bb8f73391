package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tax-credit-model/internal/model"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ElectrolyzerConfig is the preset-file and config-file shape of an electrolyzer.
type ElectrolyzerConfig struct {
	ID         string           `yaml:"id" toml:"id" json:"id,omitempty"`
	Name       string           `yaml:"name" toml:"name" json:"name,omitempty"`
	CapacityMW float64          `yaml:"capacity_mw" toml:"capacity_mw" json:"capacity_mw,omitempty"`
	Production model.Production `yaml:"production" toml:"production" json:"production"`

	ReplacementThreshold float64 `yaml:"replacement_threshold" toml:"replacement_threshold" json:"replacement_threshold,omitempty"`
	DegradationRate      float64 `yaml:"degradation_rate" toml:"degradation_rate" json:"degradation_rate,omitempty"`
	CapexUSD             float64 `yaml:"capex_usd" toml:"capex_usd" json:"capex_usd,omitempty"`
	OpexUSD              float64 `yaml:"opex_usd" toml:"opex_usd" json:"opex_usd,omitempty"`
	ReplacementCostUSD   float64 `yaml:"replacement_cost_usd" toml:"replacement_cost_usd" json:"replacement_cost_usd,omitempty"`
}

func (e ElectrolyzerConfig) IsZero() bool {
	return e == ElectrolyzerConfig{}
}

func (e ElectrolyzerConfig) ToModel() model.Electrolyzer {
	return model.Electrolyzer{
		ID:                   e.ID,
		Name:                 e.Name,
		CapacityMW:           e.CapacityMW,
		Production:           e.Production,
		ReplacementThreshold: e.ReplacementThreshold,
		DegradationRate:      e.DegradationRate,
		CapexUSD:             e.CapexUSD,
		OpexUSD:              e.OpexUSD,
		ReplacementCostUSD:   e.ReplacementCostUSD,
	}
}

func FromModel(e model.Electrolyzer) ElectrolyzerConfig {
	return ElectrolyzerConfig{
		ID:                   e.ID,
		Name:                 e.Name,
		CapacityMW:           e.CapacityMW,
		Production:           e.Production,
		ReplacementThreshold: e.ReplacementThreshold,
		DegradationRate:      e.DegradationRate,
		CapexUSD:             e.CapexUSD,
		OpexUSD:              e.OpexUSD,
		ReplacementCostUSD:   e.ReplacementCostUSD,
	}
}

// MergeElectrolyzer overlays non-zero fields from override onto base.
// Used when loading a preset file and then applying overrides from a request.
func MergeElectrolyzer(base, override ElectrolyzerConfig) ElectrolyzerConfig {
	out := base
	if override.ID != "" {
		out.ID = override.ID
	}
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityMW != 0 {
		out.CapacityMW = override.CapacityMW
	}
	if override.Production.Type != "" {
		out.Production.Type = override.Production.Type
	}
	if override.Production.ConversionRate != 0 {
		out.Production.ConversionRate = override.Production.ConversionRate
	}
	if override.ReplacementThreshold != 0 {
		out.ReplacementThreshold = override.ReplacementThreshold
	}
	if override.DegradationRate != 0 {
		out.DegradationRate = override.DegradationRate
	}
	if override.CapexUSD != 0 {
		out.CapexUSD = override.CapexUSD
	}
	if override.OpexUSD != 0 {
		out.OpexUSD = override.OpexUSD
	}
	if override.ReplacementCostUSD != 0 {
		out.ReplacementCostUSD = override.ReplacementCostUSD
	}
	return out
}

type electrolyzerFileWrapper struct {
	Electrolyzer ElectrolyzerConfig `yaml:"electrolyzer" toml:"electrolyzer"`
}

// LoadElectrolyzerFile reads a preset. YAML files carry an `electrolyzer:`
// mapping, TOML files an [electrolyzer] table.
func LoadElectrolyzerFile(path string) (ElectrolyzerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ElectrolyzerConfig{}, err
	}
	var w electrolyzerFileWrapper
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &w)
	case ".toml":
		err = toml.Unmarshal(raw, &w)
	default:
		return ElectrolyzerConfig{}, fmt.Errorf("%s: unsupported preset extension: %w", path, model.ErrInvalidArgument)
	}
	if err != nil {
		return ElectrolyzerConfig{}, fmt.Errorf("%s: %v: %w", path, err, model.ErrParse)
	}
	return w.Electrolyzer, nil
}

// Preset is an electrolyzer loaded from the preset directory. The id is the
// file name without its extension unless the file names one.
type Preset struct {
	ID           string             `json:"id"`
	File         string             `json:"file"`
	Electrolyzer model.Electrolyzer `json:"electrolyzer"`
}

// ListPresets loads every .yaml, .yml and .toml preset in dir, sorted by
// file name. Unreadable or invalid files are reported in skipped.
func ListPresets(dir string) (presets []Preset, skipped map[string]error, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isPresetFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	presets = []Preset{}
	skipped = map[string]error{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		cfg, err := LoadElectrolyzerFile(path)
		if err != nil {
			skipped[name] = err
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if cfg.ID == "" {
			cfg.ID = id
		}
		if cfg.Name == "" {
			cfg.Name = id
		}
		e := cfg.ToModel()
		if err := e.Validate(); err != nil {
			skipped[name] = err
			continue
		}
		presets = append(presets, Preset{ID: cfg.ID, File: path, Electrolyzer: e})
	}
	return presets, skipped, nil
}

// FindPreset returns the preset with the given id.
func FindPreset(dir, id string) (Preset, error) {
	presets, _, err := ListPresets(dir)
	if err != nil {
		return Preset{}, err
	}
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("preset %q: %w", id, model.ErrNotFound)
}

func isPresetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}
