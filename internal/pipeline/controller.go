// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences one research run: fan-out retrieval,
// normalization, risk scoring, and insight synthesis, settled into a
// single immutable result envelope. Stage errors degrade the envelope;
// only an invalid filter aborts the run.
// Implements: prd106-pipeline (R1-R5);
//
//	docs/ARCHITECTURE § Pipeline Controller.
package pipeline

import (
	"context"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/pdiddy/trialscope/internal/insight"
	"github.com/pdiddy/trialscope/internal/normalize"
	"github.com/pdiddy/trialscope/internal/retrieval"
	"github.com/pdiddy/trialscope/internal/risk"
	"github.com/pdiddy/trialscope/internal/source"
	"github.com/pdiddy/trialscope/pkg/types"
)

// Options selects which optional stages a run includes.
type Options struct {
	// IncludeLiterature adds the PubMed adapter to the fan-out.
	IncludeLiterature bool

	// IncludeSafety adds the openFDA adapter and, when it succeeds,
	// the safety profile.
	IncludeSafety bool

	// MaxTrials overrides the configured trial cap when positive.
	MaxTrials int
}

// Pipeline runs the retrieval-to-insight sequence over a fixed adapter
// set. It is stateless across runs and safe for concurrent use.
type Pipeline struct {
	adapters []source.Adapter
	cfg      types.PipelineConfig
	log      io.Writer
}

// New builds a Pipeline over the given adapters. Warnings from degraded
// stages are written to w as the run progresses.
func New(adapters []source.Adapter, cfg types.PipelineConfig, w io.Writer) *Pipeline {
	return &Pipeline{adapters: adapters, cfg: cfg.Defaults(), log: w}
}

// DefaultAdapters builds the standard adapter set: the trial registries
// always, literature and safety sources per the options.
func DefaultAdapters(client *http.Client, opts Options) []source.Adapter {
	adapters := []source.Adapter{
		&source.ClinicalTrialsAdapter{Client: client},
		source.NewWHOICTRPAdapter(),
		source.NewEUCTRAdapter(),
	}
	if opts.IncludeLiterature {
		adapters = append(adapters, &source.PubMedAdapter{Client: client})
	}
	if opts.IncludeSafety {
		adapters = append(adapters, &source.OpenFDAAdapter{Client: client})
	}
	return adapters
}

// Run executes one research run. The only fatal error is an invalid
// filter; every source failure degrades the envelope instead, recorded
// under Errors. The envelope is complete when Run returns and is never
// mutated afterward.
func (p *Pipeline) Run(ctx context.Context, filter types.StructuredFilter, opts Options) (types.ResultEnvelope, error) {
	if err := filter.Validate(); err != nil {
		return types.ResultEnvelope{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Deadline)
	defer cancel()

	adapters := p.selectAdapters(opts)
	combined := retrieval.New(adapters, p.cfg.Retrieval, p.log).FetchAll(ctx, filter)
	norm := normalize.Normalize(combined.Successes)

	env := types.ResultEnvelope{
		Filter:            filter,
		Trials:            norm.Trials,
		Papers:            norm.Papers,
		Errors:            sourceFailures(combined.Failures),
		DroppedCandidates: norm.Dropped,
		Timestamp:         time.Now().UTC(),
	}

	// The profile is withheld entirely when the safety source did not
	// respond: absence of evidence must stay distinguishable from
	// evidence of low risk.
	if opts.IncludeSafety {
		if _, ok := combined.Successes[source.NameOpenFDA]; ok {
			env.Safety = risk.Evaluate(norm.Events)
		}
	}

	// Comparison and insights cover the full canonical set; the cap
	// below only bounds what the envelope carries.
	env.Comparison = insight.Compare(norm.Trials)
	env.Insights = insight.Summarize(filter, env.Comparison, len(norm.Papers))

	if limit := p.trialCap(opts); len(env.Trials) > limit {
		env.Trials = env.Trials[:limit]
	}
	return env, nil
}

// selectAdapters filters the registered adapters down to the stages the
// options include. Trial registries always participate.
func (p *Pipeline) selectAdapters(opts Options) []source.Adapter {
	selected := make([]source.Adapter, 0, len(p.adapters))
	for _, a := range p.adapters {
		switch a.Name() {
		case source.NamePubMed:
			if !opts.IncludeLiterature {
				continue
			}
		case source.NameOpenFDA:
			if !opts.IncludeSafety {
				continue
			}
		}
		selected = append(selected, a)
	}
	return selected
}

func (p *Pipeline) trialCap(opts Options) int {
	if opts.MaxTrials > 0 {
		return opts.MaxTrials
	}
	return p.cfg.MaxTrials
}

// sourceFailures flattens the failure map into the envelope's error
// list, sorted by source name for stable output.
func sourceFailures(failures map[string]*source.Error) []types.SourceFailure {
	out := make([]types.SourceFailure, 0, len(failures))
	for name, serr := range failures {
		out = append(out, types.SourceFailure{
			Source:  name,
			Kind:    string(serr.Kind),
			Message: serr.Error(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
