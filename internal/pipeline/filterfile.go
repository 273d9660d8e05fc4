// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trialscope/pkg/types"
)

// FilterFile is the on-disk representation of a structured filter. The
// researcher can keep a filter under version control and rerun it later
// without retyping the flags.
type FilterFile struct {
	Condition    string   `yaml:"condition,omitempty"`
	Intervention string   `yaml:"intervention,omitempty"`
	Phases       []string `yaml:"phase,omitempty"`
	Countries    []string `yaml:"country,omitempty"`
	DateFrom     string   `yaml:"date_from,omitempty"`
	DateTo       string   `yaml:"date_to,omitempty"`
	MaxResults   int      `yaml:"max_results,omitempty"`
}

const dateFmt = "2006-01-02"

// ReadFilterFile loads a filter definition from a YAML file.
func ReadFilterFile(path string) (types.StructuredFilter, error) {
	var filter types.StructuredFilter

	data, err := os.ReadFile(path)
	if err != nil {
		return filter, fmt.Errorf("reading filter file: %w", err)
	}
	var ff FilterFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return filter, fmt.Errorf("parsing filter file: %w", err)
	}
	return ff.ToFilter()
}

// WriteFilterFile saves a filter definition to a YAML file.
func WriteFilterFile(path string, filter types.StructuredFilter) error {
	ff := FilterFile{
		Condition:    filter.Condition,
		Intervention: filter.Intervention,
		Countries:    filter.Countries,
		MaxResults:   filter.MaxResults,
	}
	for _, p := range filter.Phases {
		ff.Phases = append(ff.Phases, string(p))
	}
	if !filter.DateFrom.IsZero() {
		ff.DateFrom = filter.DateFrom.Format(dateFmt)
	}
	if !filter.DateTo.IsZero() {
		ff.DateTo = filter.DateTo.Format(dateFmt)
	}

	data, err := yaml.Marshal(&ff)
	if err != nil {
		return fmt.Errorf("marshaling filter file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ToFilter converts the stored form into a StructuredFilter.
func (ff FilterFile) ToFilter() (types.StructuredFilter, error) {
	filter := types.StructuredFilter{
		Condition:    ff.Condition,
		Intervention: ff.Intervention,
		Countries:    ff.Countries,
		MaxResults:   ff.MaxResults,
	}
	for _, p := range ff.Phases {
		filter.Phases = append(filter.Phases, types.Phase(p))
	}
	if ff.DateFrom != "" {
		t, err := time.Parse(dateFmt, ff.DateFrom)
		if err != nil {
			return filter, fmt.Errorf("invalid date_from %q: %w", ff.DateFrom, err)
		}
		filter.DateFrom = t
	}
	if ff.DateTo != "" {
		t, err := time.Parse(dateFmt, ff.DateTo)
		if err != nil {
			return filter, fmt.Errorf("invalid date_to %q: %w", ff.DateTo, err)
		}
		filter.DateTo = t
	}
	return filter, nil
}

// WriteEnvelopeFile saves a complete result envelope to a YAML file, so
// a run's output can be archived alongside the filter that produced it.
func WriteEnvelopeFile(path string, env types.ResultEnvelope) error {
	data, err := yaml.Marshal(&env)
	if err != nil {
		return fmt.Errorf("marshaling result envelope: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadEnvelopeFile loads a previously saved result envelope.
func ReadEnvelopeFile(path string) (*types.ResultEnvelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result envelope: %w", err)
	}
	var env types.ResultEnvelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing result envelope: %w", err)
	}
	return &env, nil
}
