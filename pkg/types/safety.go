// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RiskLabel is the categorical risk classification derived from a risk score.
type RiskLabel string

const (
	RiskLow    RiskLabel = "Low"
	RiskMedium RiskLabel = "Medium"
	RiskHigh   RiskLabel = "High"
)

// SafetyProfile is the safety signal computed from adverse-event reports.
// It is present in the envelope only when the safety source responded;
// a failed safety source yields no profile at all, so callers can tell
// "unknown" apart from "no risk".
type SafetyProfile struct {
	// RiskScore is the weighted safety signal, always within [0, 10].
	RiskScore float64 `json:"risk_score" yaml:"risk_score"`

	// RiskLabel classifies RiskScore: <4.0 Low, [4.0, 7.0) Medium, ≥7.0 High.
	RiskLabel RiskLabel `json:"risk_label" yaml:"risk_label"`

	// Summary is a human-readable account of the event counts and score.
	Summary string `json:"safety_summary" yaml:"safety_summary"`

	AdverseEventCount int `json:"adverse_events_count" yaml:"adverse_events_count"`
	SeriousEventCount int `json:"serious_events_count" yaml:"serious_events_count"`
	DeathReports      int `json:"death_reports" yaml:"death_reports"`

	// Warnings flags elevated event patterns (severity counts, reaction
	// keyword clusters).
	Warnings []string `json:"warnings" yaml:"warnings"`

	// BlackBoxWarnings flags critical outcomes: deaths, life-threatening
	// events, organ failure, cardiac clusters.
	BlackBoxWarnings []string `json:"black_box_warnings" yaml:"black_box_warnings"`
}
