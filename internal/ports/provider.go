package ports

import (
	"context"
	"time"

	"tokenpulse/internal/domain"
)

// Descriptor is the static configuration of one provider adapter. The
// orchestrator decides eligibility (fallback order, historical routing)
// purely from this descriptor, never by inspecting the adapter at runtime.
type Descriptor struct {
	// Name is the provenance tag stamped on every quote from this adapter.
	Name string
	// Priority is the position in the fallback order; lower is tried first.
	Priority int
	// Capabilities declares what the adapter can serve.
	Capabilities domain.CapabilitySet
	// Timeout bounds every single call to the adapter.
	Timeout time.Duration
	// RequestsPerMinute is the adapter's documented rate budget.
	// Zero means unlimited.
	RequestsPerMinute int
}

// QuoteProvider translates one external data source into the canonical
// Quote/CandleSeries shapes. Implementations must not retry internally
// beyond a single attempt; retry and fallback belong to the orchestrator.
//
// Adapters whose capability set does not include historical data return
// ErrHistoricalUnsupported from FetchHistorical; the orchestrator does not
// route historical requests to them in the first place.
type QuoteProvider interface {
	// Name returns the adapter's provenance name.
	Name() string

	// FetchQuote returns the current quote for an asset on a network, or a
	// typed failure (ErrNotFound, ErrRateLimited, ErrTimeout,
	// ErrMalformedResponse, ErrUnsupportedNetwork).
	FetchQuote(ctx context.Context, asset, network string) (*domain.Quote, error)

	// FetchHistorical returns up to `days` daily candles for the asset.
	FetchHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error)
}
