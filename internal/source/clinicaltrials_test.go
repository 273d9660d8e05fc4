// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trialscope/pkg/types"
)

func testRetrievalCfg() types.RetrievalConfig {
	return types.RetrievalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "trialscope-test/0.1",
		},
		SourceTimeout: 5 * time.Second,
	}
}

const sampleStudiesJSON = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT01234567", "briefTitle": "Pembrolizumab in Advanced Melanoma"},
        "statusModule": {
          "overallStatus": "Recruiting",
          "startDateStruct": {"date": "2024-03-01"},
          "completionDateStruct": {"date": "2027-09-01"}
        },
        "descriptionModule": {"briefSummary": "A study of pembrolizumab."},
        "conditionsModule": {"conditions": ["Melanoma"]},
        "designModule": {"phases": ["PHASE3"], "enrollmentInfo": {"count": 420}},
        "armsInterventionsModule": {"interventions": [{"name": "Pembrolizumab"}, {"name": "Placebo"}]},
        "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Example Oncology"}},
        "contactsLocationsModule": {"locations": [
          {"country": "United States"}, {"country": "Germany"}, {"country": "United States"}
        ]}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"briefTitle": "Record without an identifier"},
        "statusModule": {"overallStatus": "Completed"}
      }
    }
  ]
}`

func TestClinicalTrialsFetch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, sampleStudiesJSON)
	}))
	defer ts.Close()

	old := clinicalTrialsAPIBase
	clinicalTrialsAPIBase = ts.URL
	defer func() { clinicalTrialsAPIBase = old }()

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	filter := types.StructuredFilter{Condition: "melanoma", Intervention: "pembrolizumab", MaxResults: 25}
	candidates, err := a.Fetch(context.Background(), filter, testRetrievalCfg())
	require.NoError(t, err)

	// The study without an NCT id is skipped at the adapter boundary.
	require.Len(t, candidates, 1)
	c := candidates[0]
	assert.Equal(t, NameClinicalTrials, c.Source)
	assert.Equal(t, "NCT01234567", c.NativeID)
	assert.Equal(t, types.KindTrial, c.Kind)

	require.NotNil(t, c.Trial)
	assert.Equal(t, "Pembrolizumab in Advanced Melanoma", c.Trial.Title)
	assert.Equal(t, []string{"Melanoma"}, c.Trial.Conditions)
	assert.Equal(t, []string{"Pembrolizumab", "Placebo"}, c.Trial.Interventions)
	assert.Equal(t, "PHASE3", c.Trial.Phase)
	assert.Equal(t, "Recruiting", c.Trial.Status)
	require.NotNil(t, c.Trial.Enrollment)
	assert.Equal(t, 420, *c.Trial.Enrollment)
	assert.Equal(t, []string{"Germany", "United States"}, c.Trial.Countries)
	assert.Equal(t, "https://clinicaltrials.gov/study/NCT01234567", c.Trial.URL)

	assert.Contains(t, gotQuery, "query.cond=melanoma")
	assert.Contains(t, gotQuery, "query.intr=pembrolizumab")
	assert.Contains(t, gotQuery, "pageSize=25")
}

func TestBuildStudiesQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter types.StructuredFilter
		key    string
		want   string
	}{
		{"condition", types.StructuredFilter{Condition: "asthma"}, "query.cond", "asthma"},
		{"intervention", types.StructuredFilter{Intervention: "budesonide"}, "query.intr", "budesonide"},
		{
			"phases drop underscore",
			types.StructuredFilter{Condition: "x", Phases: []types.Phase{types.Phase2, types.Phase3}},
			"filter.phase", "PHASE2,PHASE3",
		},
		{
			"countries",
			types.StructuredFilter{Condition: "x", Countries: []string{"France", "Japan"}},
			"query.locn", "France,Japan",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := buildStudiesQuery(tt.filter)
			assert.Equal(t, tt.want, params.Get(tt.key))
		})
	}
}

func TestClinicalTrialsFetch_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"studies": [{]`)
	}))
	defer ts.Close()

	old := clinicalTrialsAPIBase
	clinicalTrialsAPIBase = ts.URL
	defer func() { clinicalTrialsAPIBase = old }()

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	_, err := a.Fetch(context.Background(), types.StructuredFilter{Condition: "x"}, testRetrievalCfg())

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrMalformed, se.Kind)
	assert.False(t, se.Retryable())
}

func TestClinicalTrialsFetch_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := clinicalTrialsAPIBase
	clinicalTrialsAPIBase = ts.URL
	defer func() { clinicalTrialsAPIBase = old }()

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	_, err := a.Fetch(context.Background(), types.StructuredFilter{Condition: "x"}, testRetrievalCfg())

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrRateLimited, se.Kind)
	assert.True(t, se.Retryable())
}

func TestClinicalTrialsFetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"studies": []}`)
	}))
	defer ts.Close()

	old := clinicalTrialsAPIBase
	clinicalTrialsAPIBase = ts.URL
	defer func() { clinicalTrialsAPIBase = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	_, err := a.Fetch(ctx, types.StructuredFilter{Condition: "x"}, testRetrievalCfg())

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrTimeout, se.Kind)
}

func TestClinicalTrialsFetch_EmptyIsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"studies": []}`)
	}))
	defer ts.Close()

	old := clinicalTrialsAPIBase
	clinicalTrialsAPIBase = ts.URL
	defer func() { clinicalTrialsAPIBase = old }()

	a := &ClinicalTrialsAdapter{Client: ts.Client()}
	candidates, err := a.Fetch(context.Background(), types.StructuredFilter{Condition: "x"}, testRetrievalCfg())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
