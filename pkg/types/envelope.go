// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceFailure describes one registry that could not contribute to a run.
type SourceFailure struct {
	// Source is the registry identifier (e.g. "pubmed").
	Source string `json:"source" yaml:"source"`

	// Kind is the failure classification: timeout, rate_limited,
	// malformed_response, or unavailable.
	Kind string `json:"kind" yaml:"kind"`

	Message string `json:"message" yaml:"message"`
}

// ResultEnvelope is the complete output of one pipeline run. It is built
// once, after all stages settle, and never mutated afterward; report
// rendering and presentation only read it. Field names are the wire
// contract and must remain stable.
type ResultEnvelope struct {
	// Filter echoes the structured filter the run was executed with.
	Filter StructuredFilter `json:"filter" yaml:"filter"`

	// Trials is the canonical trial set in stable first-occurrence order,
	// truncated to the requested maximum.
	Trials []CanonicalTrial `json:"trials" yaml:"trials"`

	Papers []CanonicalPaper `json:"papers" yaml:"papers"`

	// Safety is nil when the safety source failed or was excluded,
	// never a zero-filled placeholder.
	Safety *SafetyProfile `json:"safety,omitempty" yaml:"safety,omitempty"`

	Comparison Comparison     `json:"comparison" yaml:"comparison"`
	Insights   InsightSummary `json:"insights" yaml:"insights"`

	// Errors lists every source that failed, with its classification.
	// An envelope with data from no source at all is still a valid result.
	Errors []SourceFailure `json:"errors" yaml:"errors"`

	// DroppedCandidates counts records discarded during normalization
	// for missing required fields.
	DroppedCandidates int `json:"dropped_candidates" yaml:"dropped_candidates"`

	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
