// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries external pharmaceutical registries and converts
// their responses into typed candidate records.
// Implements: prd102-sources (R1-R5);
//
//	docs/ARCHITECTURE § Sources.
package source

import (
	"context"

	"github.com/pdiddy/trialscope/pkg/types"
)

// Adapter fetches candidate records from a single external registry. Each
// adapter owns three things only: translating the filter into its source's
// query convention, issuing the call within the caller's context budget,
// and parsing a successful response into candidates. A zero-result
// response is a success with an empty slice, never an error.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, filter types.StructuredFilter, cfg types.RetrievalConfig) ([]types.SourceCandidate, error)
}

// Registry source identifiers.
const (
	NameClinicalTrials = "clinicaltrials"
	NamePubMed         = "pubmed"
	NameOpenFDA        = "openfda"
	NameWHOICTRP       = "whoictrp"
	NameEUCTR          = "euctr"
)
