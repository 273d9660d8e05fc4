// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/trialscope/internal/httputil"
	"github.com/pdiddy/trialscope/pkg/types"
)

// clinicalTrialsAPIBase is the ClinicalTrials.gov v2 studies endpoint.
// Declared as a var so tests can substitute an httptest server.
var clinicalTrialsAPIBase = "https://clinicaltrials.gov/api/v2/studies"

// ClinicalTrialsAdapter queries the ClinicalTrials.gov registry.
type ClinicalTrialsAdapter struct {
	Client *http.Client
}

// Name returns the registry identifier.
func (a *ClinicalTrialsAdapter) Name() string { return NameClinicalTrials }

// Fetch queries the v2 studies API and returns trial candidates. Studies
// without an NCT id are skipped; the normalization stage counts drops, the
// adapter just refuses to emit a candidate with no identity.
func (a *ClinicalTrialsAdapter) Fetch(ctx context.Context, filter types.StructuredFilter, cfg types.RetrievalConfig) ([]types.SourceCandidate, error) {
	reqURL := clinicalTrialsAPIBase + "?" + buildStudiesQuery(filter).Encode()

	var resp ctStudiesResponse
	if err := httputil.GetJSON(ctx, a.Client, reqURL, cfg.UserAgent, &resp); err != nil {
		return nil, Classify(NameClinicalTrials, err)
	}

	candidates := make([]types.SourceCandidate, 0, len(resp.Studies))
	for _, study := range resp.Studies {
		proto := study.ProtocolSection
		nctID := proto.Identification.NCTID
		if nctID == "" {
			continue
		}

		rec := types.TrialRecord{
			Title:      proto.Identification.BriefTitle,
			Conditions: proto.Conditions.Conditions,
			Status:     proto.Status.OverallStatus,
			Sponsor:    proto.Sponsor.LeadSponsor.Name,
			Summary:    proto.Description.BriefSummary,
			StartDate:  proto.Status.StartDate.Date,
			URL:        "https://clinicaltrials.gov/study/" + nctID,
		}
		rec.CompletionDate = proto.Status.CompletionDate.Date

		for _, iv := range proto.Arms.Interventions {
			if iv.Name != "" {
				rec.Interventions = append(rec.Interventions, iv.Name)
			}
		}
		if len(proto.Design.Phases) > 0 {
			rec.Phase = proto.Design.Phases[0]
		}
		if proto.Design.EnrollmentInfo.Count != nil {
			n := *proto.Design.EnrollmentInfo.Count
			rec.Enrollment = &n
		}
		rec.Countries = uniqueCountries(proto.Locations.Locations)

		candidates = append(candidates, types.SourceCandidate{
			Source:   NameClinicalTrials,
			NativeID: nctID,
			Kind:     types.KindTrial,
			Trial:    &rec,
		})
	}
	return candidates, nil
}

// buildStudiesQuery translates the filter into v2 API query parameters.
func buildStudiesQuery(filter types.StructuredFilter) url.Values {
	params := url.Values{
		"format":   {"json"},
		"pageSize": {fmt.Sprintf("%d", filter.Limit())},
	}
	if filter.Condition != "" {
		params.Set("query.cond", filter.Condition)
	}
	if filter.Intervention != "" {
		params.Set("query.intr", filter.Intervention)
	}
	if len(filter.Phases) > 0 {
		// The v2 API spells phases without the underscore ("PHASE3").
		names := make([]string, 0, len(filter.Phases))
		for _, p := range filter.Phases {
			names = append(names, strings.ReplaceAll(string(p), "_", ""))
		}
		params.Set("filter.phase", strings.Join(names, ","))
	}
	if len(filter.Countries) > 0 {
		params.Set("query.locn", strings.Join(filter.Countries, ","))
	}
	return params
}

// uniqueCountries collects the distinct site countries in sorted order.
func uniqueCountries(locations []ctLocation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, loc := range locations {
		if loc.Country != "" && !seen[loc.Country] {
			seen[loc.Country] = true
			out = append(out, loc.Country)
		}
	}
	sort.Strings(out)
	return out
}

// ClinicalTrials.gov v2 API JSON structures.
type ctStudiesResponse struct {
	Studies []ctStudy `json:"studies"`
}

type ctStudy struct {
	ProtocolSection ctProtocolSection `json:"protocolSection"`
}

type ctProtocolSection struct {
	Identification ctIdentification `json:"identificationModule"`
	Status         ctStatusModule   `json:"statusModule"`
	Description    ctDescription    `json:"descriptionModule"`
	Conditions     ctConditions     `json:"conditionsModule"`
	Design         ctDesign         `json:"designModule"`
	Arms           ctArms           `json:"armsInterventionsModule"`
	Sponsor        ctSponsor        `json:"sponsorCollaboratorsModule"`
	Locations      ctLocations      `json:"contactsLocationsModule"`
}

type ctIdentification struct {
	NCTID      string `json:"nctId"`
	BriefTitle string `json:"briefTitle"`
}

type ctStatusModule struct {
	OverallStatus  string       `json:"overallStatus"`
	StartDate      ctDateStruct `json:"startDateStruct"`
	CompletionDate ctDateStruct `json:"completionDateStruct"`
}

type ctDateStruct struct {
	Date string `json:"date"`
}

type ctDescription struct {
	BriefSummary string `json:"briefSummary"`
}

type ctConditions struct {
	Conditions []string `json:"conditions"`
}

type ctDesign struct {
	Phases         []string         `json:"phases"`
	EnrollmentInfo ctEnrollmentInfo `json:"enrollmentInfo"`
}

type ctEnrollmentInfo struct {
	Count *int `json:"count"`
}

type ctArms struct {
	Interventions []ctIntervention `json:"interventions"`
}

type ctIntervention struct {
	Name string `json:"name"`
}

type ctSponsor struct {
	LeadSponsor ctLeadSponsor `json:"leadSponsor"`
}

type ctLeadSponsor struct {
	Name string `json:"name"`
}

type ctLocations struct {
	Locations []ctLocation `json:"locations"`
}

type ctLocation struct {
	Country string `json:"country"`
}
