// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateKind tags the record type a SourceCandidate carries.
type CandidateKind string

const (
	KindTrial CandidateKind = "trial"
	KindPaper CandidateKind = "paper"
	KindEvent CandidateKind = "adverse_event"
)

// SourceCandidate is a single unreconciled record as received from one
// registry, before deduplication. Exactly one of Trial, Paper, or Event is
// set, selected by Kind. Registries return loosely shaped payloads; each
// adapter converts them to these explicit records at its own boundary so
// nothing untyped travels downstream.
type SourceCandidate struct {
	// Source identifies the originating registry (e.g. "clinicaltrials").
	Source string `json:"source" yaml:"source"`

	// NativeID is the registry's own identifier for the record
	// (NCT number, PMID, safety report id).
	NativeID string `json:"native_id" yaml:"native_id"`

	// Kind selects which record field is populated.
	Kind CandidateKind `json:"kind" yaml:"kind"`

	Trial *TrialRecord `json:"trial,omitempty" yaml:"trial,omitempty"`
	Paper *PaperRecord `json:"paper,omitempty" yaml:"paper,omitempty"`
	Event *EventRecord `json:"event,omitempty" yaml:"event,omitempty"`
}

// TrialRecord is a trial as one registry reported it. Vocabulary fields
// (Phase, Status, Countries) hold the source's own strings; normalization
// maps them onto the canonical enumerations later.
type TrialRecord struct {
	Title          string   `json:"title" yaml:"title"`
	Conditions     []string `json:"condition" yaml:"condition"`
	Interventions  []string `json:"intervention" yaml:"intervention"`
	Phase          string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	Status         string   `json:"status" yaml:"status"`
	Enrollment     *int     `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`
	StartDate      string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	CompletionDate string   `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	Sponsor        string   `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
	Countries      []string `json:"country,omitempty" yaml:"country,omitempty"`
	Summary        string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	URL            string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// PaperRecord is a publication as one literature source reported it.
type PaperRecord struct {
	Title           string   `json:"title" yaml:"title"`
	Authors         []string `json:"authors" yaml:"authors"`
	Journal         string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Abstract        string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	DOI             string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL             string   `json:"url,omitempty" yaml:"url,omitempty"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// EventRecord is a single adverse-event report from a safety source.
type EventRecord struct {
	DrugName   string `json:"drug_name" yaml:"drug_name"`
	Reaction   string `json:"reaction" yaml:"reaction"`
	Outcome    string `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	ReportDate string `json:"report_date,omitempty" yaml:"report_date,omitempty"`
	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
}
