// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trialscope pipeline.
// Implements: prd101-filter (StructuredFilter);
//
//	prd103-normalize (CanonicalTrial, CanonicalPaper, CanonicalEvent);
//	prd104-risk (SafetyProfile);
//	prd105-insight (Comparison, InsightSummary);
//	prd106-pipeline (ResultEnvelope).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import (
	"fmt"
	"time"
)

// Phase is a normalized clinical trial phase value.
type Phase string

const (
	PhaseEarly1 Phase = "EARLY_PHASE_1"
	Phase1      Phase = "PHASE_1"
	Phase2      Phase = "PHASE_2"
	Phase3      Phase = "PHASE_3"
	Phase4      Phase = "PHASE_4"
	PhaseNA     Phase = "NA"
)

// TrialStatus is a normalized trial recruitment status.
type TrialStatus string

const (
	StatusRecruiting TrialStatus = "Recruiting"
	StatusActive     TrialStatus = "Active"
	StatusCompleted  TrialStatus = "Completed"
	StatusTerminated TrialStatus = "Terminated"
	StatusWithdrawn  TrialStatus = "Withdrawn"
	StatusSuspended  TrialStatus = "Suspended"
	StatusUnknown    TrialStatus = "Unknown"
)

// DefaultMaxResults bounds a filter that does not set its own result cap.
const DefaultMaxResults = 50

// StructuredFilter holds the parsed search parameters handed to the
// pipeline. Query parsing itself is an upstream concern; the pipeline
// receives the filter fully constructed and treats it as immutable.
type StructuredFilter struct {
	// Condition is the medical condition under study (e.g. "melanoma").
	Condition string `json:"condition" yaml:"condition"`

	// Intervention is the drug or treatment of interest, optional.
	Intervention string `json:"intervention,omitempty" yaml:"intervention,omitempty"`

	// Phases restricts results to the given normalized phases, optional.
	Phases []Phase `json:"phase,omitempty" yaml:"phase,omitempty"`

	// Countries restricts results to trials with sites in these countries, optional.
	Countries []string `json:"country,omitempty" yaml:"country,omitempty"`

	// DateFrom and DateTo bound trial start / publication dates, optional.
	DateFrom time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DateTo   time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`

	// MaxResults caps per-source result counts. Zero means DefaultMaxResults.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// IsEmpty reports whether the filter contains no searchable terms.
func (f StructuredFilter) IsEmpty() bool {
	return f.Condition == "" && f.Intervention == ""
}

// Validate checks the filter's construction invariants. A violation is a
// programming-contract failure in the caller, not a recoverable condition.
func (f StructuredFilter) Validate() error {
	if f.IsEmpty() {
		return fmt.Errorf("filter is empty: provide a condition or intervention")
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return fmt.Errorf("filter date range inverted: start %s after end %s",
			f.DateFrom.Format("2006-01-02"), f.DateTo.Format("2006-01-02"))
	}
	if f.MaxResults < 0 {
		return fmt.Errorf("filter max_results must be non-negative, got %d", f.MaxResults)
	}
	return nil
}

// Limit returns the effective per-source result cap.
func (f StructuredFilter) Limit() int {
	if f.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return f.MaxResults
}
