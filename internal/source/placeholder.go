// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"

	"github.com/pdiddy/trialscope/pkg/types"
)

// PlaceholderAdapter stands in for a registry without public or stable
// API access. It never issues a network call: Fetch returns a well-defined
// unavailable error immediately, so the coordinator records the source in
// the failure map the same way it records a live outage.
//
// WHO ICTRP requires registered credentials and the EU Clinical Trials
// Register has no machine-readable API; both are represented this way
// until access is arranged.
type PlaceholderAdapter struct {
	// SourceName is the registry identifier reported to the coordinator.
	SourceName string

	// Reason explains why the registry cannot be queried.
	Reason string
}

// Name returns the registry identifier.
func (a *PlaceholderAdapter) Name() string { return a.SourceName }

// Fetch always fails with an unavailable classification.
func (a *PlaceholderAdapter) Fetch(_ context.Context, _ types.StructuredFilter, _ types.RetrievalConfig) ([]types.SourceCandidate, error) {
	return nil, NewError(a.SourceName, ErrUnavailable, fmt.Errorf("%s", a.Reason))
}

// NewWHOICTRPAdapter returns the placeholder for the WHO International
// Clinical Trials Registry Platform.
func NewWHOICTRPAdapter() *PlaceholderAdapter {
	return &PlaceholderAdapter{
		SourceName: NameWHOICTRP,
		Reason:     "WHO ICTRP requires registered API credentials",
	}
}

// NewEUCTRAdapter returns the placeholder for the EU Clinical Trials Register.
func NewEUCTRAdapter() *PlaceholderAdapter {
	return &PlaceholderAdapter{
		SourceName: NameEUCTR,
		Reason:     "EU CTR exposes no machine-readable API",
	}
}
