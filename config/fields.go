package config

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFieldSet is used when COMPARISON_FIELD_SET is empty
const DefaultFieldSet = "full"

//go:embed fields.yaml
var fieldsYAML []byte

// FieldDefinition describes one row of a comparison table
type FieldDefinition struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	Kind  string `yaml:"kind"`
}

var validKinds = map[string]bool{
	"duration": true,
	"cost":     true,
	"credits":  true,
	"syllabus": true,
	"default":  true,
}

// FieldSets parses every field set bundled with the binary
func FieldSets() (map[string][]FieldDefinition, error) {
	sets := make(map[string][]FieldDefinition)
	if err := yaml.Unmarshal(fieldsYAML, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse field sets: %w", err)
	}

	for name, fields := range sets {
		if len(fields) == 0 {
			return nil, fmt.Errorf("field set %q is empty", name)
		}
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if f.Key == "" || f.Label == "" {
				return nil, fmt.Errorf("field set %q has a field without key or label", name)
			}
			if !validKinds[f.Kind] {
				return nil, fmt.Errorf("field set %q: field %q has unknown kind %q", name, f.Key, f.Kind)
			}
			if seen[f.Key] {
				return nil, fmt.Errorf("field set %q: duplicate field %q", name, f.Key)
			}
			seen[f.Key] = true
		}
	}

	return sets, nil
}

// FieldSetNames returns the bundled set names in sorted order
func FieldSetNames() []string {
	sets, err := FieldSets()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFieldSet returns the named field set, falling back to DefaultFieldSet for ""
func LoadFieldSet(name string) ([]FieldDefinition, error) {
	if name == "" {
		name = DefaultFieldSet
	}

	sets, err := FieldSets()
	if err != nil {
		return nil, err
	}

	fields, ok := sets[name]
	if !ok {
		return nil, fmt.Errorf("unknown comparison field set %q", name)
	}
	return fields, nil
}
