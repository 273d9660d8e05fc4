// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CanonicalTrial is the deduplicated, standardized representation of one
// clinical trial. Exactly one exists per unique registry identifier;
// duplicates from other sources are merged into it (set fields union,
// scalar fields first-non-empty in source-priority order).
type CanonicalTrial struct {
	// ID is the registry trial identifier (e.g. "NCT04267848"), the
	// primary deduplication key.
	ID string `json:"nct_id" yaml:"nct_id"`

	Title string `json:"title" yaml:"title"`

	// Conditions and Interventions are unions across contributing sources.
	Conditions    []string `json:"condition" yaml:"condition"`
	Interventions []string `json:"intervention" yaml:"intervention"`

	// Phase is normalized onto the Phase enumeration where the source
	// vocabulary is recognized; unrecognized values pass through unchanged.
	Phase Phase `json:"phase,omitempty" yaml:"phase,omitempty"`

	// Status is normalized onto the TrialStatus enumeration, same
	// passthrough rule as Phase.
	Status TrialStatus `json:"status" yaml:"status"`

	// Enrollment is nil when no contributing source reported a count.
	Enrollment *int `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`

	StartDate      string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	CompletionDate string `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	Sponsor        string `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`

	// Countries is the union of site countries across sources, normalized.
	Countries []string `json:"country,omitempty" yaml:"country,omitempty"`

	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Sources lists every registry that contributed to this record, in
	// merge order.
	Sources []string `json:"source" yaml:"source"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// CanonicalPaper is the deduplicated representation of one publication,
// keyed by PMID, falling back to DOI then title.
type CanonicalPaper struct {
	PMID            string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Title           string   `json:"title" yaml:"title"`
	Authors         []string `json:"authors" yaml:"authors"`
	Journal         string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Abstract        string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	DOI             string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL             string   `json:"url,omitempty" yaml:"url,omitempty"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Sources         []string `json:"source" yaml:"source"`
}

// CanonicalEvent is a deduplicated adverse-event report, keyed by the
// safety report id, falling back to drug+reaction.
type CanonicalEvent struct {
	ReportID   string `json:"report_id,omitempty" yaml:"report_id,omitempty"`
	DrugName   string `json:"drug_name" yaml:"drug_name"`
	Reaction   string `json:"reaction" yaml:"reaction"`
	Outcome    string `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	ReportDate string `json:"report_date,omitempty" yaml:"report_date,omitempty"`
	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Source     string `json:"source" yaml:"source"`
}
