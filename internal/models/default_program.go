package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default_program.yaml
var defaultProgramYAML []byte

// DefaultProgram returns the six-day split new users are seeded with.
// Each call returns a fresh copy.
func DefaultProgram() Program {
	p, err := ParseProgram(defaultProgramYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default program: %v", err))
	}
	return p
}

// ParseProgram decodes a program from YAML.
func ParseProgram(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Program{}, fmt.Errorf("parsing program: %w", err)
	}
	return p, nil
}
