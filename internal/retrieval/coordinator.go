// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval fans a structured filter out to every registered
// source adapter concurrently and collects successes and failures
// independently, so one slow or broken registry never invalidates the rest.
// Implements: prd102-sources (R6-R9);
//
//	docs/ARCHITECTURE § Retrieval.
package retrieval

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/trialscope/internal/source"
	"github.com/pdiddy/trialscope/pkg/types"
)

// Combined separates per-source outcomes. Every registered adapter appears
// in exactly one of the two maps, never both and never neither.
type Combined struct {
	Successes map[string][]types.SourceCandidate
	Failures  map[string]*source.Error
}

// Coordinator runs the concurrent fan-out. Each adapter gets its own
// goroutine and its own timeout; adapters share nothing and never block
// on each other. The fan-in loop below is the single writer into the
// combined maps, so no locking is needed anywhere.
type Coordinator struct {
	adapters []source.Adapter
	cfg      types.RetrievalConfig
	log      io.Writer
}

// New builds a Coordinator over the given adapters. Warnings about failed
// sources are written to w as they are recorded.
func New(adapters []source.Adapter, cfg types.RetrievalConfig, w io.Writer) *Coordinator {
	return &Coordinator{adapters: adapters, cfg: cfg, log: w}
}

// Adapters returns the registered adapters in registration order.
func (c *Coordinator) Adapters() []source.Adapter { return c.adapters }

// FetchAll invokes every adapter concurrently against the same filter and
// returns the combined outcome. Timed-out and rate-limited adapters are
// retried once after a fixed backoff; a malformed response is not retried
// because the same request would fail the same way. Retries count against
// ctx, never an independent deadline.
func (c *Coordinator) FetchAll(ctx context.Context, filter types.StructuredFilter) Combined {
	type outcome struct {
		name       string
		candidates []types.SourceCandidate
		err        *source.Error
	}

	ch := make(chan outcome, len(c.adapters))
	var wg sync.WaitGroup

	for _, a := range c.adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			candidates, err := c.fetchOne(ctx, a, filter)
			ch <- outcome{name: a.Name(), candidates: candidates, err: err}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	combined := Combined{
		Successes: make(map[string][]types.SourceCandidate, len(c.adapters)),
		Failures:  make(map[string]*source.Error),
	}
	for o := range ch {
		if o.err != nil {
			combined.Failures[o.name] = o.err
			fmt.Fprintf(c.log, "warning: source %s failed: %v\n", o.name, o.err)
			continue
		}
		combined.Successes[o.name] = o.candidates
	}
	return combined
}

// fetchOne runs one adapter with its per-source timeout and the
// retry-once policy.
func (c *Coordinator) fetchOne(ctx context.Context, a source.Adapter, filter types.StructuredFilter) ([]types.SourceCandidate, *source.Error) {
	candidates, err := c.attempt(ctx, a, filter)
	if err == nil {
		return candidates, nil
	}

	serr := source.Classify(a.Name(), err)
	if !serr.Retryable() {
		return nil, serr
	}

	select {
	case <-ctx.Done():
		// The overall deadline elapsed during the failure; surface the
		// original classification rather than waiting out the backoff.
		return nil, serr
	case <-time.After(c.cfg.RetryBackoff):
	}

	candidates, err = c.attempt(ctx, a, filter)
	if err != nil {
		return nil, source.Classify(a.Name(), err)
	}
	return candidates, nil
}

// attempt bounds a single adapter call with its own timeout so a stalled
// registry cannot hold up the others past its budget.
func (c *Coordinator) attempt(ctx context.Context, a source.Adapter, filter types.StructuredFilter) ([]types.SourceCandidate, error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.SourceTimeout)
	defer cancel()
	return a.Fetch(actx, filter, c.cfg)
}
