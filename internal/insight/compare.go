// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight derives the comparative view and qualitative findings
// from the canonical trial and paper sets. Everything here is fixed
// threshold rules over counts: no scoring models, no external calls.
// Implements: prd105-insight (R1-R4);
//
//	docs/ARCHITECTURE § Insight Synthesis.
package insight

import (
	"sort"
	"strings"

	"github.com/pdiddy/trialscope/pkg/types"
)

// topTermCap bounds the common-term lists in the comparison.
const topTermCap = 10

// Compare builds the comparative view across the canonical trial set.
// An empty set yields a zero-valued comparison, never an error.
func Compare(trials []types.CanonicalTrial) types.Comparison {
	cmp := types.Comparison{
		TrialCount:          len(trials),
		PhaseDistribution:   make(map[types.Phase]int),
		StatusDistribution:  make(map[types.TrialStatus]int),
		CountryDistribution: make(map[string]int),
	}
	if len(trials) == 0 {
		return cmp
	}

	interventions := make(map[string]int)
	conditions := make(map[string]int)
	timeline := make(map[string]int)
	var enrollments []int
	terminated := 0

	for _, t := range trials {
		if t.Phase != "" {
			cmp.PhaseDistribution[t.Phase]++
		}
		cmp.StatusDistribution[t.Status]++
		if t.Status == types.StatusTerminated {
			terminated++
		}
		for _, c := range t.Countries {
			cmp.CountryDistribution[c]++
		}
		for _, v := range t.Interventions {
			interventions[v]++
		}
		for _, v := range t.Conditions {
			conditions[v]++
		}
		if t.Enrollment != nil {
			enrollments = append(enrollments, *t.Enrollment)
		}
		if year := startYear(t.StartDate); year != "" {
			timeline[year]++
		}
		if mentionsPediatric(t) {
			cmp.PediatricTrials++
		}
	}

	cmp.CommonInterventions = topTerms(interventions, topTermCap)
	cmp.CommonConditions = topTerms(conditions, topTermCap)
	cmp.EnrollmentStats = enrollmentStats(enrollments)
	cmp.TerminationRate = float64(terminated) / float64(len(trials)) * 100
	if len(timeline) > 0 {
		cmp.TimelineByYear = timeline
	}
	return cmp
}

// topTerms returns the n most frequent terms, most common first, ties
// broken alphabetically so output is reproducible.
func topTerms(freq map[string]int, n int) []string {
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// enrollmentStats summarizes known enrollment counts. Trials without a
// count contribute nothing; treating them as zero would drag every
// statistic toward the floor.
func enrollmentStats(known []int) types.EnrollmentStats {
	stats := types.EnrollmentStats{Known: len(known)}
	if len(known) == 0 {
		return stats
	}

	sorted := append([]int(nil), known...)
	sort.Ints(sorted)

	for _, n := range sorted {
		stats.Total += n
	}
	stats.Mean = float64(stats.Total) / float64(len(sorted))
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		stats.Median = float64(sorted[mid])
	} else {
		stats.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return stats
}

// pediatricTerms mark a trial as studying a pediatric population.
var pediatricTerms = []string{"pediatric", "paediatric", "children", "adolescent", "infant"}

func mentionsPediatric(t types.CanonicalTrial) bool {
	text := strings.ToLower(t.Title + " " + strings.Join(t.Conditions, " ") + " " + t.Summary)
	for _, term := range pediatricTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// startYear extracts the year from a YYYY-MM-DD (or YYYY-MM, or YYYY)
// date string.
func startYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}
