// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trialscope/pkg/types"
)

func melanomaFilter() types.StructuredFilter {
	return types.StructuredFilter{Condition: "melanoma"}
}

func TestSummarize_EmptyTrialSet(t *testing.T) {
	s := Summarize(melanomaFilter(), Compare(nil), 0)
	assert.Contains(t, s.Overview, "0 registered trials")
	assert.Contains(t, s.Overview, "melanoma")
	require.Len(t, s.Gaps, 1)
	assert.Contains(t, s.Gaps[0], "empty")
	assert.Empty(t, s.KeyFindings)
}

func TestSummarize_KeyFindings(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Phase: types.Phase3, Status: types.StatusRecruiting, Interventions: []string{"pembrolizumab"}, Enrollment: intPtr(100)},
		{ID: "NCT2", Phase: types.Phase3, Status: types.StatusRecruiting, Interventions: []string{"pembrolizumab"}, Enrollment: intPtr(300)},
		{ID: "NCT3", Phase: types.Phase1, Status: types.StatusCompleted, Interventions: []string{"nivolumab"}},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 2)
	require.NotEmpty(t, s.KeyFindings)
	assert.Contains(t, s.KeyFindings[0], "Phase 3 (2 of 3)")
	assert.Contains(t, s.KeyFindings[1], "Recruiting (2 trials)")
	assert.Contains(t, s.KeyFindings[2], `"pembrolizumab"`)
	assert.Contains(t, s.KeyFindings[3], "Median enrollment is 200")
}

func TestSummarize_GeographicConcentrationPattern(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Status: types.StatusCompleted, Countries: []string{"United States"}},
		{ID: "NCT2", Status: types.StatusCompleted, Countries: []string{"United States"}},
		{ID: "NCT3", Status: types.StatusCompleted, Countries: []string{"United States"}},
		{ID: "NCT4", Status: types.StatusCompleted, Countries: []string{"Japan"}},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 1)
	require.NotEmpty(t, s.Patterns)
	assert.Contains(t, s.Patterns[0], "75% of trial sites are in United States")
}

func TestSummarize_NoConcentrationBelowThreshold(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Status: types.StatusCompleted, Countries: []string{"United States"}},
		{ID: "NCT2", Status: types.StatusCompleted, Countries: []string{"Japan"}},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 1)
	for _, p := range s.Patterns {
		assert.NotContains(t, p, "Geographic concentration")
	}
}

func TestSummarize_TerminationRecommendation(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Status: types.StatusTerminated},
		{ID: "NCT2", Status: types.StatusTerminated},
		{ID: "NCT3", Status: types.StatusCompleted},
		{ID: "NCT4", Status: types.StatusCompleted},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 1)
	require.NotEmpty(t, s.Recommendations)
	assert.Contains(t, s.Recommendations[0], "50% of matched trials were terminated")
	// Four trials is below the small-evidence threshold too.
	assert.Contains(t, s.Recommendations[len(s.Recommendations)-1], "small")
}

func TestSummarize_Gaps(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Phase: types.Phase1, Status: types.StatusCompleted},
		{ID: "NCT2", Phase: types.Phase2, Status: types.StatusCompleted},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 0)
	require.Len(t, s.Gaps, 4)
	assert.Contains(t, s.Gaps[0], "No Phase 4 trials")
	assert.Contains(t, s.Gaps[1], "No trials in Phase 3")
	assert.Contains(t, s.Gaps[2], "pediatric")
	assert.Contains(t, s.Gaps[3], "no matching publications")
}

func TestSummarize_PediatricTrialsCloseTheGap(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Phase: types.Phase2, Status: types.StatusRecruiting, Title: "Pembrolizumab in Pediatric Melanoma"},
	}

	s := Summarize(melanomaFilter(), Compare(trials), 1)
	for _, gap := range s.Gaps {
		assert.NotContains(t, gap, "pediatric")
	}
}

func TestSummarize_DeterministicAcrossRuns(t *testing.T) {
	trials := []types.CanonicalTrial{
		{ID: "NCT1", Phase: types.Phase2, Status: types.StatusRecruiting, Countries: []string{"France", "Germany"}},
		{ID: "NCT2", Phase: types.Phase3, Status: types.StatusCompleted, Countries: []string{"Germany"}},
	}

	first := Summarize(melanomaFilter(), Compare(trials), 1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Summarize(melanomaFilter(), Compare(trials), 1))
	}
}
