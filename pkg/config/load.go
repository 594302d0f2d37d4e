package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var presets = map[string]Overrides{
	"paper": {
		"style": map[string]any{
			"figsize":     []any{3.6, 2.7},
			"style":       "white",
			"context":     "paper",
			"font_params": map[string]any{"size": 8.0},
		},
	},
	"presentation": {
		"style": map[string]any{
			"figsize":     []any{6.4, 4.8},
			"style":       "whitegrid",
			"context":     "talk",
			"font_params": map[string]any{"size": 12.0},
		},
	},
}

// Preset returns a named override set for the caller tier.
func Preset(name string) (Overrides, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (must be one of: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return deepCopy(map[string]any(p)).(map[string]any), nil
}

// PresetNames returns the known preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads caller overrides from a TOML, YAML or JSON file, chosen
// by extension.
func LoadFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return ParseTOML(data)
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (must be .toml, .yaml, .yml or .json)", ext)
	}
}

// ParseTOML decodes TOML overrides.
func ParseTOML(data []byte) (Overrides, error) {
	out := map[string]any{}
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return out, nil
}

// ParseYAML decodes YAML or JSON overrides.
func ParseYAML(data []byte) (Overrides, error) {
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return out, nil
}

// ParseAssignments turns "path=value" strings into overrides. Values are
// read as YAML, so "true", "0.3", "[3, 2]" and "whitegrid" get their
// natural types.
func ParseAssignments(assignments []string) (Overrides, error) {
	out := Overrides{}
	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected path=value)", a)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
