// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trialscope/internal/source"
	"github.com/pdiddy/trialscope/pkg/types"
)

func trialCandidate(src, id string, mutate func(*types.TrialRecord)) types.SourceCandidate {
	rec := &types.TrialRecord{
		Title:  "Trial " + id,
		Status: "Recruiting",
	}
	if mutate != nil {
		mutate(rec)
	}
	return types.SourceCandidate{Source: src, NativeID: id, Kind: types.KindTrial, Trial: rec}
}

func TestNormalize_DedupByTrialID(t *testing.T) {
	bySource := map[string][]types.SourceCandidate{
		source.NameClinicalTrials: {
			trialCandidate(source.NameClinicalTrials, "NCT100", nil),
			trialCandidate(source.NameClinicalTrials, "NCT200", nil),
		},
		source.NameWHOICTRP: {
			trialCandidate(source.NameWHOICTRP, "NCT100", nil),
		},
	}

	res := Normalize(bySource)
	require.Len(t, res.Trials, 2)
	assert.Equal(t, "NCT100", res.Trials[0].ID)
	assert.Equal(t, []string{source.NameClinicalTrials, source.NameWHOICTRP}, res.Trials[0].Sources)
	assert.Zero(t, res.Dropped)
}

func TestNormalize_DisjointCountrySetsUnion(t *testing.T) {
	bySource := map[string][]types.SourceCandidate{
		source.NameClinicalTrials: {
			trialCandidate(source.NameClinicalTrials, "NCT100", func(r *types.TrialRecord) {
				r.Countries = []string{"United States", "Germany"}
			}),
		},
		source.NameWHOICTRP: {
			trialCandidate(source.NameWHOICTRP, "NCT100", func(r *types.TrialRecord) {
				r.Countries = []string{"Japan", "France"}
			}),
		},
	}

	res := Normalize(bySource)
	require.Len(t, res.Trials, 1)
	assert.ElementsMatch(t,
		[]string{"United States", "Germany", "Japan", "France"},
		res.Trials[0].Countries)
}

func TestNormalize_MergeIsIdempotent(t *testing.T) {
	build := func(n int) map[string][]types.SourceCandidate {
		var cands []types.SourceCandidate
		for i := 0; i < n; i++ {
			cands = append(cands, trialCandidate(source.NameClinicalTrials, "NCT100", func(r *types.TrialRecord) {
				r.Countries = []string{"US"}
				r.Conditions = []string{"Melanoma"}
				e := 120
				r.Enrollment = &e
			}))
		}
		return map[string][]types.SourceCandidate{source.NameClinicalTrials: cands}
	}

	once := Normalize(build(1))
	twice := Normalize(build(2))

	require.Len(t, once.Trials, 1)
	require.Len(t, twice.Trials, 1)
	assert.Equal(t, once.Trials[0], twice.Trials[0])
}

func TestNormalize_ScalarConflictFirstKnownBySourcePriority(t *testing.T) {
	// The secondary registry reports a different enrollment and sponsor;
	// the registry of record wins regardless of map iteration order.
	bySource := map[string][]types.SourceCandidate{
		source.NameWHOICTRP: {
			trialCandidate(source.NameWHOICTRP, "NCT100", func(r *types.TrialRecord) {
				e := 999
				r.Enrollment = &e
				r.Sponsor = "Secondary Sponsor"
			}),
		},
		source.NameClinicalTrials: {
			trialCandidate(source.NameClinicalTrials, "NCT100", func(r *types.TrialRecord) {
				e := 120
				r.Enrollment = &e
				r.Sponsor = "Primary Sponsor"
			}),
		},
	}

	res := Normalize(bySource)
	require.Len(t, res.Trials, 1)
	require.NotNil(t, res.Trials[0].Enrollment)
	assert.Equal(t, 120, *res.Trials[0].Enrollment)
	assert.Equal(t, "Primary Sponsor", res.Trials[0].Sponsor)
}

func TestNormalize_MissingIdentifierDroppedAndCounted(t *testing.T) {
	bySource := map[string][]types.SourceCandidate{
		source.NameClinicalTrials: {
			trialCandidate(source.NameClinicalTrials, "", nil),
			trialCandidate(source.NameClinicalTrials, "NCT100", nil),
		},
	}

	res := Normalize(bySource)
	assert.Len(t, res.Trials, 1)
	assert.Equal(t, 1, res.Dropped)
}

func TestNormalize_StableFirstOccurrenceOrder(t *testing.T) {
	var cands []types.SourceCandidate
	ids := []string{"NCT5", "NCT3", "NCT9", "NCT1"}
	for _, id := range ids {
		cands = append(cands, trialCandidate(source.NameClinicalTrials, id, nil))
	}
	res := Normalize(map[string][]types.SourceCandidate{source.NameClinicalTrials: cands})

	require.Len(t, res.Trials, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, res.Trials[i].ID)
	}
}

func TestNormalize_Papers(t *testing.T) {
	paper := func(pmid, doi, title string) types.SourceCandidate {
		return types.SourceCandidate{
			Source:   source.NamePubMed,
			NativeID: pmid,
			Kind:     types.KindPaper,
			Paper:    &types.PaperRecord{Title: title, DOI: doi, Keywords: []string{"oncology"}},
		}
	}
	bySource := map[string][]types.SourceCandidate{
		source.NamePubMed: {
			paper("38000001", "10.1/a", "Study One"),
			paper("38000001", "", "Study One duplicate"),
			paper("", "10.1/b", "Study Two"),
			paper("", "", ""), // no usable key
		},
	}

	res := Normalize(bySource)
	assert.Len(t, res.Papers, 2)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "Study One", res.Papers[0].Title)
}

func TestNormalize_EventsDedupByReportID(t *testing.T) {
	event := func(id, drug, reaction string) types.SourceCandidate {
		return types.SourceCandidate{
			Source:   source.NameOpenFDA,
			NativeID: id,
			Kind:     types.KindEvent,
			Event:    &types.EventRecord{DrugName: drug, Reaction: reaction, Severity: "Mild"},
		}
	}
	bySource := map[string][]types.SourceCandidate{
		source.NameOpenFDA: {
			event("R1", "DrugA", "Nausea"),
			event("R1", "DrugA", "Nausea"),
			event("", "DrugA", "Headache"), // keyed by drug+reaction
		},
	}

	res := Normalize(bySource)
	assert.Len(t, res.Events, 2)
	assert.Zero(t, res.Dropped)
}

func TestNormalize_VocabularyApplied(t *testing.T) {
	bySource := map[string][]types.SourceCandidate{
		source.NameClinicalTrials: {
			trialCandidate(source.NameClinicalTrials, "NCT100", func(r *types.TrialRecord) {
				r.Phase = "PHASE3"
				r.Status = "ACTIVE_NOT_RECRUITING"
				r.Countries = []string{"us", "gb"}
				r.Summary = "A  study <b>with</b> markup\n\nand   spacing."
			}),
		},
	}

	res := Normalize(bySource)
	require.Len(t, res.Trials, 1)
	trial := res.Trials[0]
	assert.Equal(t, types.Phase3, trial.Phase)
	assert.Equal(t, types.StatusActive, trial.Status)
	assert.Equal(t, []string{"United States", "United Kingdom"}, trial.Countries)
	assert.Equal(t, "A study with markup and spacing.", trial.Summary)
}
