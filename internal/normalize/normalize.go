// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reconciles raw source candidates into the canonical
// entity model: deduplication by registry identifier, merge in
// source-priority order, and vocabulary standardization.
// Implements: prd103-normalize (R1-R5);
//
//	docs/ARCHITECTURE § Normalization.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/trialscope/internal/source"
	"github.com/pdiddy/trialscope/pkg/types"
)

// Result holds the canonical entity set in stable first-occurrence order,
// plus the count of candidates dropped for missing required fields.
type Result struct {
	Trials  []types.CanonicalTrial
	Papers  []types.CanonicalPaper
	Events  []types.CanonicalEvent
	Dropped int
}

// sourcePriority fixes the order candidates are merged in, so scalar
// conflicts resolve the same way on every run: the registry of record
// wins over secondary registries.
var sourcePriority = map[string]int{
	source.NameClinicalTrials: 0,
	source.NameWHOICTRP:       1,
	source.NameEUCTR:          2,
	source.NamePubMed:         3,
	source.NameOpenFDA:        4,
}

const unknownPriority = 100

func priorityOf(src string) int {
	if p, ok := sourcePriority[src]; ok {
		return p
	}
	return unknownPriority
}

// Normalize reconciles the coordinator's per-source successes into the
// canonical model. Candidates missing their identity (and any usable
// fallback key) are dropped and counted, never fatal.
func Normalize(bySource map[string][]types.SourceCandidate) Result {
	flat := flatten(bySource)

	var res Result
	trialIdx := make(map[string]int)
	paperIdx := make(map[string]int)
	eventSeen := make(map[string]bool)

	for _, c := range flat {
		switch c.Kind {
		case types.KindTrial:
			if c.Trial == nil || c.NativeID == "" {
				res.Dropped++
				continue
			}
			if i, ok := trialIdx[c.NativeID]; ok {
				mergeTrial(&res.Trials[i], c)
				continue
			}
			trialIdx[c.NativeID] = len(res.Trials)
			res.Trials = append(res.Trials, canonicalTrial(c))

		case types.KindPaper:
			if c.Paper == nil {
				res.Dropped++
				continue
			}
			key := paperKey(c)
			if key == "" {
				res.Dropped++
				continue
			}
			if i, ok := paperIdx[key]; ok {
				mergePaper(&res.Papers[i], c)
				continue
			}
			paperIdx[key] = len(res.Papers)
			res.Papers = append(res.Papers, canonicalPaper(c))

		case types.KindEvent:
			if c.Event == nil {
				res.Dropped++
				continue
			}
			key := eventKey(c)
			if key == "" {
				res.Dropped++
				continue
			}
			if eventSeen[key] {
				continue
			}
			eventSeen[key] = true
			res.Events = append(res.Events, canonicalEvent(c))

		default:
			res.Dropped++
		}
	}
	return res
}

// flatten orders all candidates by source priority, keeping each source's
// own ordering within its block. The ordering makes merge results
// reproducible across runs regardless of goroutine completion order.
func flatten(bySource map[string][]types.SourceCandidate) []types.SourceCandidate {
	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := priorityOf(names[i]), priorityOf(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	var flat []types.SourceCandidate
	for _, name := range names {
		flat = append(flat, bySource[name]...)
	}
	return flat
}

// --- trials ---

func canonicalTrial(c types.SourceCandidate) types.CanonicalTrial {
	r := c.Trial
	t := types.CanonicalTrial{
		ID:             c.NativeID,
		Title:          CleanText(r.Title),
		Conditions:     cleanAll(r.Conditions),
		Interventions:  cleanAll(r.Interventions),
		Phase:          NormalizePhase(r.Phase),
		Status:         NormalizeStatus(r.Status),
		StartDate:      r.StartDate,
		CompletionDate: r.CompletionDate,
		Sponsor:        CleanText(r.Sponsor),
		Summary:        CleanText(r.Summary),
		Sources:        []string{c.Source},
		URL:            r.URL,
	}
	if r.Enrollment != nil && *r.Enrollment >= 0 {
		n := *r.Enrollment
		t.Enrollment = &n
	}
	for _, country := range r.Countries {
		t.Countries = appendUnique(t.Countries, NormalizeCountry(country))
	}
	return t
}

// mergeTrial folds a later candidate with the same trial identifier into
// the canonical record: set-valued fields union, scalar fields keep the
// first known value (candidates arrive in source-priority order).
func mergeTrial(dst *types.CanonicalTrial, c types.SourceCandidate) {
	r := c.Trial
	if dst.Title == "" {
		dst.Title = CleanText(r.Title)
	}
	for _, v := range cleanAll(r.Conditions) {
		dst.Conditions = appendUnique(dst.Conditions, v)
	}
	for _, v := range cleanAll(r.Interventions) {
		dst.Interventions = appendUnique(dst.Interventions, v)
	}
	if dst.Phase == "" {
		dst.Phase = NormalizePhase(r.Phase)
	}
	if dst.Status == "" || dst.Status == types.StatusUnknown {
		dst.Status = NormalizeStatus(r.Status)
	}
	if dst.Enrollment == nil && r.Enrollment != nil && *r.Enrollment >= 0 {
		n := *r.Enrollment
		dst.Enrollment = &n
	}
	if dst.StartDate == "" {
		dst.StartDate = r.StartDate
	}
	if dst.CompletionDate == "" {
		dst.CompletionDate = r.CompletionDate
	}
	if dst.Sponsor == "" {
		dst.Sponsor = CleanText(r.Sponsor)
	}
	if dst.Summary == "" {
		dst.Summary = CleanText(r.Summary)
	}
	if dst.URL == "" {
		dst.URL = r.URL
	}
	for _, country := range r.Countries {
		dst.Countries = appendUnique(dst.Countries, NormalizeCountry(country))
	}
	dst.Sources = appendUnique(dst.Sources, c.Source)
}

// --- papers ---

// paperKey prefers the PMID, then the DOI, then the normalized title.
func paperKey(c types.SourceCandidate) string {
	if c.NativeID != "" {
		return "id:" + c.NativeID
	}
	if c.Paper.DOI != "" {
		return "doi:" + c.Paper.DOI
	}
	if t := normalizeTitle(c.Paper.Title); t != "" {
		return "title:" + t
	}
	return ""
}

func canonicalPaper(c types.SourceCandidate) types.CanonicalPaper {
	r := c.Paper
	return types.CanonicalPaper{
		PMID:            c.NativeID,
		Title:           CleanText(r.Title),
		Authors:         cleanAll(r.Authors),
		Journal:         CleanText(r.Journal),
		PublicationDate: r.PublicationDate,
		Abstract:        CleanText(r.Abstract),
		DOI:             r.DOI,
		URL:             r.URL,
		Keywords:        cleanAll(r.Keywords),
		Sources:         []string{c.Source},
	}
}

func mergePaper(dst *types.CanonicalPaper, c types.SourceCandidate) {
	r := c.Paper
	if dst.PMID == "" {
		dst.PMID = c.NativeID
	}
	if dst.Title == "" {
		dst.Title = CleanText(r.Title)
	}
	if len(dst.Authors) == 0 {
		dst.Authors = cleanAll(r.Authors)
	}
	if dst.Journal == "" {
		dst.Journal = CleanText(r.Journal)
	}
	if dst.PublicationDate == "" {
		dst.PublicationDate = r.PublicationDate
	}
	if dst.Abstract == "" {
		dst.Abstract = CleanText(r.Abstract)
	}
	if dst.DOI == "" {
		dst.DOI = r.DOI
	}
	if dst.URL == "" {
		dst.URL = r.URL
	}
	for _, kw := range cleanAll(r.Keywords) {
		dst.Keywords = appendUnique(dst.Keywords, kw)
	}
	dst.Sources = appendUnique(dst.Sources, c.Source)
}

// --- events ---

// eventKey prefers the safety report id, falling back to drug+reaction.
func eventKey(c types.SourceCandidate) string {
	if c.NativeID != "" {
		return "id:" + c.NativeID
	}
	if c.Event.DrugName != "" && c.Event.Reaction != "" {
		return "dr:" + c.Event.DrugName + "_" + c.Event.Reaction
	}
	return ""
}

func canonicalEvent(c types.SourceCandidate) types.CanonicalEvent {
	r := c.Event
	return types.CanonicalEvent{
		ReportID:   c.NativeID,
		DrugName:   CleanText(r.DrugName),
		Reaction:   CleanText(r.Reaction),
		Outcome:    r.Outcome,
		Country:    NormalizeCountry(r.Country),
		ReportDate: r.ReportDate,
		Severity:   r.Severity,
		Source:     c.Source,
	}
}

// --- text helpers ---

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText strips HTML tags and collapses runs of whitespace.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = htmlTagRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func cleanAll(values []string) []string {
	var out []string
	for _, v := range values {
		if cleaned := CleanText(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func appendUnique(set []string, v string) []string {
	if v == "" {
		return set
	}
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

// normalizeTitle lowercases and strips punctuation for title-based dedup.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
