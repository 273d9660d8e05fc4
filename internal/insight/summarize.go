// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/trialscope/pkg/types"
)

// Threshold rules for qualitative findings.
const (
	// geoConcentrationPct flags a pattern when one country hosts more
	// than this share of located trials.
	geoConcentrationPct = 60.0

	// highTerminationPct flags an elevated termination rate.
	highTerminationPct = 20.0

	// smallEvidenceBase flags result sets too small to generalize from.
	smallEvidenceBase = 5
)

// Summarize derives the qualitative findings from a comparison, the
// originating filter, and the publication count. The rules are fixed
// and order is deterministic: the same inputs always produce the same
// summary.
func Summarize(filter types.StructuredFilter, cmp types.Comparison, paperCount int) types.InsightSummary {
	s := types.InsightSummary{
		Overview: overview(filter, cmp, paperCount),
	}
	if cmp.TrialCount == 0 {
		s.Gaps = append(s.Gaps, "No registered trials matched the filter; evidence base is empty.")
		return s
	}

	s.KeyFindings = keyFindings(cmp)
	s.Patterns = patterns(cmp)
	s.Recommendations = recommendations(cmp)
	s.Gaps = gaps(cmp, paperCount)
	return s
}

func overview(filter types.StructuredFilter, cmp types.Comparison, paperCount int) string {
	subject := filter.Condition
	if subject == "" {
		subject = filter.Intervention
	}
	if subject == "" {
		subject = "the requested scope"
	}
	return fmt.Sprintf("Found %d registered trials and %d publications for %s.",
		cmp.TrialCount, paperCount, subject)
}

func keyFindings(cmp types.Comparison) []string {
	var out []string
	if phase, n := dominantPhase(cmp.PhaseDistribution); phase != "" {
		out = append(out, fmt.Sprintf("Most trials are in %s (%d of %d).",
			phaseLabel(phase), n, cmp.TrialCount))
	}
	if status, n := dominantStatus(cmp.StatusDistribution); status != "" && status != types.StatusUnknown {
		out = append(out, fmt.Sprintf("The most common trial status is %s (%d trials).", status, n))
	}
	if len(cmp.CommonInterventions) > 0 {
		out = append(out, fmt.Sprintf("The most studied intervention is %q.", cmp.CommonInterventions[0]))
	}
	if cmp.EnrollmentStats.Known > 0 {
		out = append(out, fmt.Sprintf("Median enrollment is %.0f participants across %d trials with known counts.",
			cmp.EnrollmentStats.Median, cmp.EnrollmentStats.Known))
	}
	return out
}

func patterns(cmp types.Comparison) []string {
	var out []string

	located := 0
	for _, n := range cmp.CountryDistribution {
		located += n
	}
	if country, n := dominantCountry(cmp.CountryDistribution); located > 0 {
		if pct := float64(n) / float64(located) * 100; pct > geoConcentrationPct {
			out = append(out, fmt.Sprintf("Geographic concentration: %.0f%% of trial sites are in %s.", pct, country))
		}
	}
	if recruiting := cmp.StatusDistribution[types.StatusRecruiting]; recruiting > 0 {
		pct := float64(recruiting) / float64(cmp.TrialCount) * 100
		if pct >= 50 {
			out = append(out, fmt.Sprintf("Active field: %.0f%% of trials are currently recruiting.", pct))
		}
	}
	if years := activeYears(cmp.TimelineByYear); len(years) >= 3 {
		out = append(out, fmt.Sprintf("Sustained activity: trials started across %d distinct years (%s–%s).",
			len(years), years[0], years[len(years)-1]))
	}
	return out
}

func recommendations(cmp types.Comparison) []string {
	var out []string
	if cmp.TerminationRate > highTerminationPct {
		out = append(out, fmt.Sprintf("Review termination reasons before planning: %.0f%% of matched trials were terminated.",
			cmp.TerminationRate))
	}
	if cmp.StatusDistribution[types.StatusRecruiting] > 0 {
		out = append(out, "Recruiting trials exist; patient referral may be an option.")
	}
	if cmp.TrialCount < smallEvidenceBase {
		out = append(out, "Interpret findings cautiously; the matched trial set is small.")
	}
	return out
}

func gaps(cmp types.Comparison, paperCount int) []string {
	var out []string
	if cmp.PhaseDistribution[types.Phase4] == 0 {
		out = append(out, "No Phase 4 trials found; post-marketing evidence is missing.")
	}
	if missing := missingPhases(cmp.PhaseDistribution); len(missing) > 0 && len(missing) < 3 {
		out = append(out, fmt.Sprintf("No trials in %s.", strings.Join(missing, " or ")))
	}
	if cmp.PediatricTrials == 0 {
		out = append(out, "No trials mention a pediatric population.")
	}
	if paperCount == 0 && cmp.TrialCount > 0 {
		out = append(out, "Registered trials exist but no matching publications were found.")
	}
	return out
}

// --- helpers ---

func dominantPhase(dist map[types.Phase]int) (types.Phase, int) {
	var best types.Phase
	bestN := 0
	for phase, n := range dist {
		if n > bestN || (n == bestN && string(phase) < string(best)) {
			best, bestN = phase, n
		}
	}
	return best, bestN
}

func dominantStatus(dist map[types.TrialStatus]int) (types.TrialStatus, int) {
	var best types.TrialStatus
	bestN := 0
	for status, n := range dist {
		if n > bestN || (n == bestN && string(status) < string(best)) {
			best, bestN = status, n
		}
	}
	return best, bestN
}

func dominantCountry(dist map[string]int) (string, int) {
	best, bestN := "", 0
	for country, n := range dist {
		if n > bestN || (n == bestN && country < best) {
			best, bestN = country, n
		}
	}
	return best, bestN
}

// missingPhases lists core development phases (1-3) with no trials.
func missingPhases(dist map[types.Phase]int) []string {
	var out []string
	for _, p := range []types.Phase{types.Phase1, types.Phase2, types.Phase3} {
		if dist[p] == 0 {
			out = append(out, phaseLabel(p))
		}
	}
	return out
}

func activeYears(timeline map[string]int) []string {
	years := make([]string, 0, len(timeline))
	for y := range timeline {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// phaseLabel renders the enum value for prose ("PHASE_3" becomes "Phase 3").
func phaseLabel(p types.Phase) string {
	words := strings.Split(strings.ToLower(string(p)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
