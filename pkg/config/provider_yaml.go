package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chrissnell/decoplan/internal/dive"
)

// YAMLProvider implements PlanProvider for YAML plan files
type YAMLProvider struct {
	filename string
	plan     *PlanData
}

// NewYAMLProvider creates a new YAML plan provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadPlan reads and validates the plan file. The file is only read once.
func (y *YAMLProvider) LoadPlan() (*PlanData, error) {
	if y.plan != nil {
		return y.plan, nil
	}

	planFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	plan, err := DecodeYAML(bytes.NewReader(planFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.plan = plan
	return plan, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// DecodeYAML parses and validates a plan. Unknown keys are rejected so typos do not
// silently fall back to defaults.
func DecodeYAML(r io.Reader) (*PlanData, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var plan PlanData
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: failed to parse plan: %w", dive.ErrConfiguration, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// EncodeYAML writes the plan in the format DecodeYAML reads
func EncodeYAML(w io.Writer, plan *PlanData) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return err
	}
	return enc.Close()
}
