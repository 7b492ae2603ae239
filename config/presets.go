package config

// presets.go loads named FormatConfig presets from YAML. A preset only lists
// the fields it changes; everything else keeps the default rendering settings.
//
//	github:
//	  alignment: center
//	  bold_first_column: true
//	csv:
//	  output_format: csv

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/Cortexa-LLC/mcp/src/gridmd/render"
)

// PresetDefault is always available and equals render.DefaultFormatConfig.
const PresetDefault = "default"

// Presets maps preset names to rendering configurations.
type Presets map[string]render.FormatConfig

type presetEntry render.FormatConfig

func (p *presetEntry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	cfg := render.DefaultFormatConfig()
	if err := unmarshal(&cfg); err != nil {
		return err
	}
	*p = presetEntry(cfg)
	return nil
}

// BuiltinPresets returns the presets available without a presets file.
func BuiltinPresets() Presets {
	plain := render.DefaultFormatConfig()
	plain.BoldHeader = false
	plain.PrettyPrint = false

	return Presets{
		PresetDefault: render.DefaultFormatConfig(),
		"plain":       plain,
	}
}

// ParsePresets decodes a YAML presets document and validates every entry.
func ParsePresets(data []byte) (Presets, error) {
	var raw map[string]presetEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	out := make(Presets, len(raw))
	for name, entry := range raw {
		cfg := render.FormatConfig(entry)
		if _, err := render.ParseAlignment(string(cfg.Alignment)); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		f, err := render.ParseFormat(string(cfg.OutputFormat))
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		cfg.OutputFormat = f
		out[name] = cfg
	}
	return out, nil
}

// LoadPresets returns the built-in presets overlaid with those in the file at
// path. An empty path yields the built-ins only.
func LoadPresets(path string) (Presets, error) {
	presets := BuiltinPresets()
	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	fromFile, err := ParsePresets(data)
	if err != nil {
		return nil, err
	}
	for name, cfg := range fromFile {
		presets[name] = cfg
	}
	return presets, nil
}

// Presets loads the presets configured by EnvPresets.
func (c *Config) Presets() (Presets, error) {
	return LoadPresets(c.PresetsPath)
}

// Get returns the named preset.
func (p Presets) Get(name string) (render.FormatConfig, error) {
	cfg, ok := p[name]
	if !ok {
		return render.FormatConfig{}, fmt.Errorf("unknown preset %q", name)
	}
	return cfg, nil
}

// Names lists preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
