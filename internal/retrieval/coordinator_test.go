// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trialscope/internal/source"
	"github.com/pdiddy/trialscope/pkg/types"
)

// mockAdapter scripts per-call outcomes: errs[i] is returned on call i,
// with candidates returned once the script runs out of errors.
type mockAdapter struct {
	name       string
	candidates []types.SourceCandidate
	errs       []error
	calls      int32
	delay      time.Duration
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Fetch(ctx context.Context, _ types.StructuredFilter, _ types.RetrievalConfig) ([]types.SourceCandidate, error) {
	n := atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if int(n) <= len(m.errs) {
		return nil, m.errs[n-1]
	}
	return m.candidates, nil
}

func trialCandidate(src, id string) types.SourceCandidate {
	return types.SourceCandidate{
		Source:   src,
		NativeID: id,
		Kind:     types.KindTrial,
		Trial:    &types.TrialRecord{Title: "Trial " + id, Status: "Recruiting"},
	}
}

func testCfg() types.RetrievalConfig {
	return types.RetrievalConfig{
		HTTPConfig:    types.HTTPConfig{Timeout: time.Second, UserAgent: "test"},
		SourceTimeout: 100 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	}
}

func TestFetchAll_CoversEveryAdapterExactlyOnce(t *testing.T) {
	adapters := []source.Adapter{
		&mockAdapter{name: "a", candidates: []types.SourceCandidate{trialCandidate("a", "NCT1")}},
		&mockAdapter{name: "b", errs: []error{source.NewError("b", source.ErrUnavailable, fmt.Errorf("down"))}},
		&mockAdapter{name: "c", candidates: nil},
	}

	var buf bytes.Buffer
	combined := New(adapters, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	assert.Len(t, combined.Successes, 2)
	assert.Len(t, combined.Failures, 1)
	for _, a := range adapters {
		_, ok1 := combined.Successes[a.Name()]
		_, ok2 := combined.Failures[a.Name()]
		assert.True(t, ok1 != ok2, "adapter %s must appear in exactly one map", a.Name())
	}
}

func TestFetchAll_OneTimeoutOneSuccess(t *testing.T) {
	slow := &mockAdapter{name: "slow", delay: time.Second}
	fast := &mockAdapter{name: "fast", candidates: []types.SourceCandidate{trialCandidate("fast", "NCT2")}}

	var buf bytes.Buffer
	combined := New([]source.Adapter{slow, fast}, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	require.Contains(t, combined.Successes, "fast")
	assert.Len(t, combined.Successes["fast"], 1)

	require.Contains(t, combined.Failures, "slow")
	assert.Equal(t, source.ErrTimeout, combined.Failures["slow"].Kind)
	assert.Contains(t, buf.String(), "warning: source slow failed")
}

func TestFetchAll_RetriesRateLimitedOnce(t *testing.T) {
	flaky := &mockAdapter{
		name:       "flaky",
		errs:       []error{source.NewError("flaky", source.ErrRateLimited, fmt.Errorf("429"))},
		candidates: []types.SourceCandidate{trialCandidate("flaky", "NCT3")},
	}

	var buf bytes.Buffer
	combined := New([]source.Adapter{flaky}, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	require.Contains(t, combined.Successes, "flaky")
	assert.Equal(t, int32(2), atomic.LoadInt32(&flaky.calls))
}

func TestFetchAll_SecondFailureIsFinal(t *testing.T) {
	flaky := &mockAdapter{
		name: "flaky",
		errs: []error{
			source.NewError("flaky", source.ErrRateLimited, fmt.Errorf("429")),
			source.NewError("flaky", source.ErrRateLimited, fmt.Errorf("429 again")),
		},
	}

	var buf bytes.Buffer
	combined := New([]source.Adapter{flaky}, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	require.Contains(t, combined.Failures, "flaky")
	assert.Equal(t, source.ErrRateLimited, combined.Failures["flaky"].Kind)
	// One retry only, never more.
	assert.Equal(t, int32(2), atomic.LoadInt32(&flaky.calls))
}

func TestFetchAll_MalformedIsNotRetried(t *testing.T) {
	bad := &mockAdapter{
		name: "bad",
		errs: []error{source.NewError("bad", source.ErrMalformed, fmt.Errorf("unexpected token"))},
	}

	var buf bytes.Buffer
	combined := New([]source.Adapter{bad}, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	require.Contains(t, combined.Failures, "bad")
	assert.Equal(t, source.ErrMalformed, combined.Failures["bad"].Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&bad.calls))
}

func TestFetchAll_AllSourcesFailedIsValid(t *testing.T) {
	adapters := []source.Adapter{
		&mockAdapter{name: "a", errs: []error{source.NewError("a", source.ErrUnavailable, fmt.Errorf("down"))}},
		&mockAdapter{name: "b", errs: []error{source.NewError("b", source.ErrUnavailable, fmt.Errorf("down"))}},
	}

	var buf bytes.Buffer
	combined := New(adapters, testCfg(), &buf).FetchAll(context.Background(), types.StructuredFilter{Condition: "x"})

	assert.Empty(t, combined.Successes)
	assert.Len(t, combined.Failures, 2)
}

func TestFetchAll_OverallDeadlineCancelsStragglers(t *testing.T) {
	cfg := testCfg()
	cfg.SourceTimeout = time.Second

	slow := &mockAdapter{name: "slow", delay: 500 * time.Millisecond}
	fast := &mockAdapter{name: "fast", candidates: []types.SourceCandidate{trialCandidate("fast", "NCT4")}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	start := time.Now()
	combined := New([]source.Adapter{slow, fast}, cfg, &buf).FetchAll(ctx, types.StructuredFilter{Condition: "x"})

	assert.Less(t, time.Since(start), 400*time.Millisecond, "deadline should cut the slow adapter short")
	require.Contains(t, combined.Successes, "fast")
	require.Contains(t, combined.Failures, "slow")
	assert.Equal(t, source.ErrTimeout, combined.Failures["slow"].Kind)
}
