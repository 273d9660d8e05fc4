// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package risk computes a bounded safety signal from canonical
// adverse-event reports: a weighted score on [0, 10], a categorical
// label, and warning flags for elevated event patterns.
// Implements: prd104-risk (R1-R4);
//
//	docs/ARCHITECTURE § Risk Scoring.
package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/trialscope/pkg/types"
)

// Score component weights. They sum to 1 and rank outcome above severity:
// what happened to the patient carries more signal than how the report
// was graded.
const (
	SeverityWeight  = 0.30
	OutcomeWeight   = 0.45
	FrequencyWeight = 0.25

	// FrequencyLogScale maps report volume onto [0, 10] via
	// FrequencyLogScale * log10(1 + n), saturating near 10^4 reports.
	FrequencyLogScale = 2.5

	// Label thresholds over the composite score.
	MediumThreshold = 4.0
	HighThreshold   = 7.0
)

// Warning thresholds over raw event counts.
const (
	severeWarnThreshold   = 5
	moderateWarnThreshold = 20
	hospitalWarnThreshold = 10
	clusterWarnThreshold  = 5
	cardiacBoxThreshold   = 10
)

// reactionClusters are reaction-text keyword groups that trigger a
// warning when their combined report count exceeds clusterWarnThreshold.
var reactionClusters = []struct {
	label    string
	keywords []string
}{
	{"cardiac", []string{"cardiac", "heart", "arrhythmia", "myocardial"}},
	{"hepatic", []string{"hepat", "liver"}},
	{"renal", []string{"renal", "kidney"}},
	{"respiratory", []string{"respiratory", "dyspnea", "pneumonia"}},
	{"neurological", []string{"seizure", "stroke", "convulsion"}},
}

// counts aggregates one pass over the event set.
type counts struct {
	total           int
	serious         int
	deaths          int
	hospitalized    int
	severe          int
	moderate        int
	lifeThreatening int
	failure         int
	clusters        map[string]int
}

// Evaluate computes the safety profile for a set of adverse-event
// reports. An empty set is a valid input and yields a zero score with a
// Low label; it is the caller's job to withhold the profile entirely
// when the safety source itself failed.
func Evaluate(events []types.CanonicalEvent) *types.SafetyProfile {
	c := tally(events)

	score := Score(c.total, c.serious, c.deaths)
	profile := &types.SafetyProfile{
		RiskScore:         score,
		RiskLabel:         Label(score),
		Summary:           summarize(c, score),
		AdverseEventCount: c.total,
		SeriousEventCount: c.serious,
		DeathReports:      c.deaths,
		Warnings:          warnings(c),
		BlackBoxWarnings:  blackBoxWarnings(c),
	}
	return profile
}

// Score combines severity, outcome, and frequency components into a
// weighted score clamped to [0, 10]. With zero reports every component
// is zero.
func Score(total, serious, deaths int) float64 {
	if total <= 0 {
		return 0
	}
	severity := float64(serious) / float64(total) * 10
	outcome := float64(deaths) / float64(total) * 10
	frequency := math.Min(10, FrequencyLogScale*math.Log10(1+float64(total)))

	score := SeverityWeight*severity + OutcomeWeight*outcome + FrequencyWeight*frequency
	return clamp(score, 0, 10)
}

// Label classifies a score: below MediumThreshold is Low, below
// HighThreshold is Medium, the rest is High.
func Label(score float64) types.RiskLabel {
	switch {
	case score < MediumThreshold:
		return types.RiskLow
	case score < HighThreshold:
		return types.RiskMedium
	default:
		return types.RiskHigh
	}
}

func tally(events []types.CanonicalEvent) counts {
	c := counts{clusters: make(map[string]int)}
	for _, e := range events {
		c.total++
		switch e.Severity {
		case "Severe":
			c.severe++
			c.serious++
		case "Moderate":
			c.moderate++
			c.serious++
		}
		outcome := strings.ToLower(e.Outcome)
		if strings.Contains(outcome, "death") {
			c.deaths++
		}
		if strings.Contains(outcome, "hospitalization") {
			c.hospitalized++
		}

		reaction := strings.ToLower(e.Reaction)
		if strings.Contains(reaction, "life threatening") || strings.Contains(reaction, "life-threatening") {
			c.lifeThreatening++
		}
		if strings.Contains(reaction, "failure") {
			c.failure++
		}
		for _, cluster := range reactionClusters {
			for _, kw := range cluster.keywords {
				if strings.Contains(reaction, kw) {
					c.clusters[cluster.label]++
					break
				}
			}
		}
	}
	return c
}

// warnings flags elevated event patterns. Order is fixed so output is
// reproducible: severity counts first, then reaction clusters in their
// declared order.
func warnings(c counts) []string {
	var out []string
	if c.severe > severeWarnThreshold {
		out = append(out, fmt.Sprintf("High number of severe adverse events (%d reports)", c.severe))
	}
	if c.moderate > moderateWarnThreshold {
		out = append(out, fmt.Sprintf("Elevated number of moderate adverse events (%d reports)", c.moderate))
	}
	if c.hospitalized > hospitalWarnThreshold {
		out = append(out, fmt.Sprintf("Frequent hospitalizations reported (%d reports)", c.hospitalized))
	}
	for _, cluster := range reactionClusters {
		if n := c.clusters[cluster.label]; n > clusterWarnThreshold {
			out = append(out, fmt.Sprintf("Cluster of %s reactions (%d reports)", cluster.label, n))
		}
	}
	return out
}

// blackBoxWarnings flags critical outcomes that warrant prominent display.
func blackBoxWarnings(c counts) []string {
	var out []string
	if c.deaths > 0 {
		out = append(out, fmt.Sprintf("Death reported in %d adverse event reports", c.deaths))
	}
	if c.lifeThreatening > 0 {
		out = append(out, fmt.Sprintf("Life-threatening reactions reported (%d reports)", c.lifeThreatening))
	}
	if c.failure > clusterWarnThreshold {
		out = append(out, fmt.Sprintf("Organ failure reactions reported (%d reports)", c.failure))
	}
	if c.clusters["cardiac"] > cardiacBoxThreshold {
		out = append(out, fmt.Sprintf("High volume of cardiac reactions (%d reports)", c.clusters["cardiac"]))
	}
	return out
}

func summarize(c counts, score float64) string {
	if c.total == 0 {
		return "No adverse event reports found."
	}
	return fmt.Sprintf("%d adverse event reports analyzed: %d serious, %d deaths, %d hospitalizations. Risk score %.1f/10 (%s).",
		c.total, c.serious, c.deaths, c.hospitalized, score, Label(score))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
