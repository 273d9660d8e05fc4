// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/trialscope/internal/httputil"
)

// ErrorKind classifies a source failure. The coordinator's retry policy
// keys off the kind: timeouts and rate limits earn one retry, a malformed
// response is deterministically bad and is not retried.
type ErrorKind string

const (
	ErrTimeout     ErrorKind = "timeout"
	ErrRateLimited ErrorKind = "rate_limited"
	ErrMalformed   ErrorKind = "malformed_response"
	ErrUnavailable ErrorKind = "unavailable"
)

// Error is a classified failure from one source adapter.
type Error struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure kind earns a retry.
func (e *Error) Retryable() bool {
	return e.Kind == ErrTimeout || e.Kind == ErrRateLimited
}

// NewError builds a classified source error.
func NewError(src string, kind ErrorKind, err error) *Error {
	return &Error{Source: src, Kind: kind, Err: err}
}

// Classify wraps err with a failure kind inferred from its cause: a
// context deadline becomes timeout, HTTP 429 becomes rate_limited, other
// HTTP statuses and transport errors become unavailable, and an
// undecodable body becomes malformed_response. An err that is already an
// *Error is returned unchanged.
func Classify(src string, err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(src, ErrTimeout, err)
	}
	var status *httputil.StatusError
	if errors.As(err, &status) {
		if status.Code == http.StatusTooManyRequests {
			return NewError(src, ErrRateLimited, err)
		}
		return NewError(src, ErrUnavailable, err)
	}
	var decode *httputil.DecodeError
	if errors.As(err, &decode) {
		return NewError(src, ErrMalformed, err)
	}
	return NewError(src, ErrUnavailable, err)
}
