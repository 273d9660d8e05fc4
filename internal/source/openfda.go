// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/trialscope/internal/httputil"
	"github.com/pdiddy/trialscope/pkg/types"
)

// openFDAAPIBase is the openFDA drug adverse-event endpoint. Declared as a
// var so tests can substitute an httptest server.
var openFDAAPIBase = "https://api.fda.gov/drug/event.json"

// openFDAMaxLimit is the per-request cap imposed by the openFDA API.
const openFDAMaxLimit = 100

// OpenFDAAdapter queries the FDA FAERS database through openFDA.
type OpenFDAAdapter struct {
	Client *http.Client
}

// Name returns the registry identifier.
func (a *OpenFDAAdapter) Name() string { return NameOpenFDA }

// Fetch queries openFDA for adverse-event reports about the filter's
// intervention (falling back to the condition). openFDA answers an empty
// result set with HTTP 404, which is a zero-result success, not a failure.
func (a *OpenFDAAdapter) Fetch(ctx context.Context, filter types.StructuredFilter, cfg types.RetrievalConfig) ([]types.SourceCandidate, error) {
	drug := filter.Intervention
	if drug == "" {
		drug = filter.Condition
	}
	if drug == "" {
		return []types.SourceCandidate{}, nil
	}

	limit := filter.Limit()
	if limit > openFDAMaxLimit {
		limit = openFDAMaxLimit
	}
	params := url.Values{
		"search": {fmt.Sprintf(`patient.drug.medicinalproduct:%q`, drug)},
		"limit":  {fmt.Sprintf("%d", limit)},
	}
	if cfg.OpenFDAAPIKey != "" {
		params.Set("api_key", cfg.OpenFDAAPIKey)
	}

	var resp openFDAResponse
	err := httputil.GetJSON(ctx, a.Client, openFDAAPIBase+"?"+params.Encode(), cfg.UserAgent, &resp)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return []types.SourceCandidate{}, nil
		}
		return nil, Classify(NameOpenFDA, err)
	}

	candidates := make([]types.SourceCandidate, 0, len(resp.Results))
	for _, report := range resp.Results {
		rec := parseEventReport(report)
		candidates = append(candidates, types.SourceCandidate{
			Source:   NameOpenFDA,
			NativeID: report.SafetyReportID,
			Kind:     types.KindEvent,
			Event:    &rec,
		})
	}
	return candidates, nil
}

// parseEventReport derives the event record from a FAERS report, including
// the outcome and severity implied by the seriousness flags.
func parseEventReport(report openFDAReport) types.EventRecord {
	rec := types.EventRecord{
		DrugName: "Unknown",
		Reaction: "Unknown",
		Country:  report.OccurCountry,
	}

	if len(report.Patient.Drugs) > 0 && report.Patient.Drugs[0].MedicinalProduct != "" {
		rec.DrugName = report.Patient.Drugs[0].MedicinalProduct
	}

	var reactions []string
	for _, r := range report.Patient.Reactions {
		if r.MedDRATerm != "" {
			reactions = append(reactions, r.MedDRATerm)
		}
	}
	if len(reactions) > 3 {
		reactions = reactions[:3]
	}
	if len(reactions) > 0 {
		rec.Reaction = strings.Join(reactions, ", ")
	}

	switch {
	case report.SeriousnessDeath == "1":
		rec.Outcome = "Death"
		rec.Severity = "Severe"
	case report.SeriousnessHospitalization == "1":
		rec.Outcome = "Hospitalization"
		rec.Severity = "Moderate"
	case report.Serious == "1":
		rec.Outcome = "Serious"
		rec.Severity = "Moderate"
	default:
		rec.Outcome = "Non-serious"
		rec.Severity = "Mild"
	}

	// FAERS dates arrive as YYYYMMDD.
	if len(report.ReceiveDate) == 8 {
		rec.ReportDate = report.ReceiveDate[:4] + "-" + report.ReceiveDate[4:6] + "-" + report.ReceiveDate[6:8]
	}
	return rec
}

// openFDA JSON structures.
type openFDAResponse struct {
	Results []openFDAReport `json:"results"`
}

type openFDAReport struct {
	SafetyReportID             string         `json:"safetyreportid"`
	Serious                    string         `json:"serious"`
	SeriousnessDeath           string         `json:"seriousnessdeath"`
	SeriousnessHospitalization string         `json:"seriousnesshospitalization"`
	OccurCountry               string         `json:"occurcountry"`
	ReceiveDate                string         `json:"receivedate"`
	Patient                    openFDAPatient `json:"patient"`
}

type openFDAPatient struct {
	Drugs     []openFDADrug     `json:"drug"`
	Reactions []openFDAReaction `json:"reaction"`
}

type openFDADrug struct {
	MedicinalProduct string `json:"medicinalproduct"`
}

type openFDAReaction struct {
	MedDRATerm string `json:"reactionmeddrapt"`
}
