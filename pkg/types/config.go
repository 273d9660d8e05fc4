// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trialscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// SourceTimeout bounds each adapter invocation independently (default 5s).
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout"`

	// RetryBackoff is the fixed delay before the single retry granted to
	// a timed-out or rate-limited adapter (default 500ms).
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff"`

	// NCBIAPIKey and NCBIEmail raise the E-utilities rate limit, optional.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`
	NCBIEmail  string `json:"ncbi_email,omitempty" yaml:"ncbi_email,omitempty"`

	// OpenFDAAPIKey raises the openFDA rate limit, optional.
	OpenFDAAPIKey string `json:"openfda_api_key,omitempty" yaml:"openfda_api_key,omitempty"`
}

// PipelineConfig groups the settings for a complete pipeline run.
type PipelineConfig struct {
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`

	// Deadline bounds the whole run, retries included. When it elapses,
	// still-running adapters are cancelled and the run proceeds with what
	// succeeded (default 30s).
	Deadline time.Duration `json:"deadline" yaml:"deadline"`

	// MaxTrials caps the trial list in the envelope (default 50).
	MaxTrials int `json:"max_trials" yaml:"max_trials"`
}

// Defaults fills zero-valued settings with their documented defaults.
func (c PipelineConfig) Defaults() PipelineConfig {
	if c.Retrieval.Timeout == 0 {
		c.Retrieval.Timeout = 10 * time.Second
	}
	if c.Retrieval.UserAgent == "" {
		c.Retrieval.UserAgent = "trialscope/0.1"
	}
	if c.Retrieval.SourceTimeout == 0 {
		c.Retrieval.SourceTimeout = 5 * time.Second
	}
	if c.Retrieval.RetryBackoff == 0 {
		c.Retrieval.RetryBackoff = 500 * time.Millisecond
	}
	if c.Deadline == 0 {
		c.Deadline = 30 * time.Second
	}
	if c.MaxTrials == 0 {
		c.MaxTrials = DefaultMaxResults
	}
	return c
}
