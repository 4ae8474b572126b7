package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonwraymond/fontops/codepoint"
	"github.com/jonwraymond/fontops/fallback"
	"github.com/jonwraymond/fontops/registry"
	"github.com/jonwraymond/fontops/resilience"
	"github.com/jonwraymond/fontops/store"
	"github.com/jonwraymond/fontops/subset"
)

// ErrMissingParam is returned for a request without a required query
// parameter.
var ErrMissingParam = errors.New("server: missing query parameter")

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingParam),
		errors.Is(err, codepoint.ErrInvalidCodepoint),
		errors.Is(err, fallback.ErrNoResolvableGlyphs):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrUnknownFont),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrInvalidPath):
		return http.StatusNotFound
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, resilience.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, resilience.ErrBulkheadFull),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		// subset.ErrUnsupportedFont, subset.ErrMergeConflict and
		// store.ErrStorageFailure land here.
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal detail of server-side failures.
func publicMessage(status int, err error) string {
	switch {
	case status < http.StatusInternalServerError:
		return err.Error()
	case errors.Is(err, subset.ErrUnsupportedFont):
		return subset.ErrUnsupportedFont.Error()
	case errors.Is(err, subset.ErrMergeConflict):
		return subset.ErrMergeConflict.Error()
	case errors.Is(err, store.ErrStorageFailure):
		return store.ErrStorageFailure.Error()
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, resilience.ErrBulkheadFull):
		return err.Error()
	default:
		return http.StatusText(status)
	}
}
