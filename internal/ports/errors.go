package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard
// errors so the orchestrator's logging and failure aggregation stay uniform
// across heterogeneous sources.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Provider Adapter Errors (the typed fail reasons of the adapter contract)
	ErrNotFound              = errors.New("asset not known to this provider")
	ErrRateLimited           = errors.New("provider rate limit exceeded")
	ErrTimeout               = errors.New("provider request timed out")
	ErrMalformedResponse     = errors.New("provider returned a malformed response")
	ErrUnsupportedNetwork    = errors.New("network not supported by this provider")
	ErrHistoricalUnsupported = errors.New("provider does not serve historical data")

	// Orchestrator Errors
	ErrNoSourceAvailable = errors.New("no price source available")
)
