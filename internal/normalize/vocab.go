// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"
	"unicode"

	"github.com/pdiddy/trialscope/pkg/types"
)

// Vocabulary tables are process-wide and immutable after init. Lookups are
// case-insensitive with underscores treated as spaces, so "PHASE_3",
// "Phase 3", and "phase iii" all land on the same enum value.
// Unrecognized values pass through unchanged; dropping them would be
// silent data loss.

var phaseTable = map[string]types.Phase{
	"phase 1":       types.Phase1,
	"phase i":       types.Phase1,
	"phase1":        types.Phase1,
	"phase 2":       types.Phase2,
	"phase ii":      types.Phase2,
	"phase2":        types.Phase2,
	"phase 3":       types.Phase3,
	"phase iii":     types.Phase3,
	"phase3":        types.Phase3,
	"phase 4":       types.Phase4,
	"phase iv":      types.Phase4,
	"phase4":        types.Phase4,
	"early phase 1": types.PhaseEarly1,
	"early phase1":  types.PhaseEarly1,
	"n/a":           types.PhaseNA,
	"na":            types.PhaseNA,
}

var statusTable = map[string]types.TrialStatus{
	"recruiting":              types.StatusRecruiting,
	"enrolling by invitation": types.StatusRecruiting,
	"not yet recruiting":      types.StatusRecruiting,
	"active, not recruiting":  types.StatusActive,
	"active not recruiting":   types.StatusActive,
	"active":                  types.StatusActive,
	"completed":               types.StatusCompleted,
	"terminated":              types.StatusTerminated,
	"withdrawn":               types.StatusWithdrawn,
	"suspended":               types.StatusSuspended,
	"unknown":                 types.StatusUnknown,
	"unknown status":          types.StatusUnknown,
}

var countryTable = map[string]string{
	"us":                       "United States",
	"usa":                      "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"gb":                       "United Kingdom",
	"great britain":            "United Kingdom",
}

// foldKey lowercases and maps underscores to spaces for table lookup.
func foldKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), " ")
}

// NormalizePhase maps a source phase string onto the Phase enumeration.
// Any string containing "phase" followed by a digit resolves to that
// phase; unrecognized values pass through unchanged.
func NormalizePhase(raw string) types.Phase {
	if raw == "" {
		return ""
	}
	key := foldKey(raw)
	if p, ok := phaseTable[key]; ok {
		return p
	}
	if idx := strings.Index(key, "phase"); idx >= 0 {
		rest := strings.TrimLeft(key[idx+len("phase"):], " ")
		if rest != "" && rest[0] >= '1' && rest[0] <= '4' {
			return types.Phase("PHASE_" + rest[:1])
		}
	}
	return types.Phase(raw)
}

// NormalizeStatus maps a source status string onto the TrialStatus
// enumeration, passing unrecognized values through unchanged.
func NormalizeStatus(raw string) types.TrialStatus {
	if raw == "" {
		return types.StatusUnknown
	}
	if s, ok := statusTable[foldKey(raw)]; ok {
		return s
	}
	return types.TrialStatus(raw)
}

// NormalizeCountry resolves common country aliases and title-cases the rest.
func NormalizeCountry(raw string) string {
	if raw == "" {
		return raw
	}
	if c, ok := countryTable[foldKey(raw)]; ok {
		return c
	}
	return titleCase(raw)
}

// titleCase capitalizes the first letter of each word.
func titleCase(s string) string {
	var b strings.Builder
	prevSpace := true
	for _, r := range strings.ToLower(s) {
		if prevSpace {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevSpace = unicode.IsSpace(r)
	}
	return b.String()
}
