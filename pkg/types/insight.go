// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EnrollmentStats summarizes enrollment counts over trials with a known
// enrollment. Trials with unknown enrollment are excluded from every
// statistic, never treated as zero; Known records how many contributed.
type EnrollmentStats struct {
	Known  int     `json:"known" yaml:"known"`
	Total  int     `json:"total" yaml:"total"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    int     `json:"min" yaml:"min"`
	Max    int     `json:"max" yaml:"max"`
}

// Comparison holds the comparative view across the canonical trial set:
// categorical distributions, common terms, and enrollment statistics.
type Comparison struct {
	TrialCount int `json:"trial_count" yaml:"trial_count"`

	// CommonInterventions and CommonConditions list the most frequent
	// values, most common first, capped at ten.
	CommonInterventions []string `json:"common_interventions" yaml:"common_interventions"`
	CommonConditions    []string `json:"common_conditions" yaml:"common_conditions"`

	PhaseDistribution   map[Phase]int       `json:"phase_distribution" yaml:"phase_distribution"`
	StatusDistribution  map[TrialStatus]int `json:"status_distribution" yaml:"status_distribution"`
	CountryDistribution map[string]int      `json:"country_distribution" yaml:"country_distribution"`

	EnrollmentStats EnrollmentStats `json:"enrollment_stats" yaml:"enrollment_stats"`

	// TerminationRate is the percentage of trials with Terminated status.
	TerminationRate float64 `json:"termination_rate" yaml:"termination_rate"`

	// PediatricTrials counts trials whose title, conditions, or summary
	// mention a pediatric population.
	PediatricTrials int `json:"pediatric_trials" yaml:"pediatric_trials"`

	// TimelineByYear counts trials by start year, for charting consumers.
	TimelineByYear map[string]int `json:"timeline_by_year,omitempty" yaml:"timeline_by_year,omitempty"`
}

// InsightSummary carries the qualitative findings derived from the
// comparison by fixed threshold rules.
type InsightSummary struct {
	Overview        string   `json:"overview" yaml:"overview"`
	KeyFindings     []string `json:"key_findings" yaml:"key_findings"`
	Patterns        []string `json:"patterns" yaml:"patterns"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	Gaps            []string `json:"gaps" yaml:"gaps"`
}
