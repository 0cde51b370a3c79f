package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type profileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

// LoadProfiles returns the built-in profiles overlaid with the profiles in
// the YAML file at path. An empty path returns the built-ins.
func LoadProfiles(path string) (*Profiles, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles overlays YAML profile definitions on the built-ins.
func ParseProfiles(data []byte) (*Profiles, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles yaml: %w", err)
	}
	list := append(builtinProfiles(), f.Profiles...)
	return NewProfiles(list...)
}
