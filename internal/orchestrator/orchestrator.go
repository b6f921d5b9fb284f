package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/ports"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultDegradedLatency  = 2 * time.Second
	defaultBatchConcurrency = 5
)

// defaultHealthProbe is a cheap canonical query every source should be able
// to answer: USDC on Polygon.
var defaultHealthProbe = domain.AssetRef{
	Asset:   "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
	Network: "polygon",
}

// Adapter pairs a provider implementation with its static descriptor.
type Adapter struct {
	Provider   ports.QuoteProvider
	Descriptor ports.Descriptor
}

// Config holds orchestrator-wide settings.
type Config struct {
	Logger ports.Logger
	// DegradedLatency is the health-check latency above which a responsive
	// adapter is reported as degraded rather than up.
	DegradedLatency time.Duration
	// BatchConcurrency caps how many GetQuote calls a batch runs at once.
	BatchConcurrency int
	// HealthProbe overrides the canonical health-check query.
	HealthProbe domain.AssetRef
}

type slot struct {
	provider ports.QuoteProvider
	desc     ports.Descriptor
	limiter  *rate.Limiter // nil when the adapter has no rate budget
}

// Orchestrator hides the unreliability of individual price sources behind a
// single call surface: serial priority-ordered fallback for quotes,
// concurrent fan-out for diagnostics and health. All state is immutable
// after construction, so concurrent calls need no locking.
type Orchestrator struct {
	logger           ports.Logger
	slots            []slot
	degradedLatency  time.Duration
	batchConcurrency int
	healthProbe      domain.AssetRef
}

// New creates an orchestrator over the given adapters. Adapters are always
// tried in ascending Priority order; the order is fixed at construction and
// never adjusted by runtime success rates, so source selection stays
// predictable for callers building reports.
func New(cfg Config, adapters []Adapter) (*Orchestrator, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required: %w", ports.ErrConfigurationError)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("at least one adapter is required: %w", ports.ErrConfigurationError)
	}
	if cfg.DegradedLatency <= 0 {
		cfg.DegradedLatency = defaultDegradedLatency
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}
	if cfg.HealthProbe.Asset == "" {
		cfg.HealthProbe = defaultHealthProbe
	}

	seen := make(map[string]struct{}, len(adapters))
	slots := make([]slot, 0, len(adapters))
	for _, a := range adapters {
		if a.Provider == nil {
			return nil, fmt.Errorf("adapter %q has no provider: %w", a.Descriptor.Name, ports.ErrConfigurationError)
		}
		name := a.Descriptor.Name
		if name == "" {
			name = a.Provider.Name()
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate adapter name %q: %w", name, ports.ErrConfigurationError)
		}
		seen[name] = struct{}{}

		desc := a.Descriptor
		desc.Name = name
		if desc.Timeout <= 0 {
			desc.Timeout = defaultTimeout
		}

		var limiter *rate.Limiter
		if desc.RequestsPerMinute > 0 {
			limiter = rate.NewLimiter(rate.Limit(desc.RequestsPerMinute)/60, desc.RequestsPerMinute)
		}
		slots = append(slots, slot{provider: a.Provider, desc: desc, limiter: limiter})
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].desc.Priority < slots[j].desc.Priority })

	return &Orchestrator{
		logger:           cfg.Logger,
		slots:            slots,
		degradedLatency:  cfg.DegradedLatency,
		batchConcurrency: cfg.BatchConcurrency,
		healthProbe:      cfg.HealthProbe,
	}, nil
}

// Attempt records the outcome of trying one adapter during fallback.
type Attempt struct {
	Provider string        `json:"provider"`
	Err      error         `json:"-"`
	Reason   string        `json:"reason,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// AggregatedError is returned when every eligible adapter failed. It carries
// one attempt per adapter, in priority order, so callers can see exactly
// which sources were tried and why each one failed.
type AggregatedError struct {
	Asset    string
	Network  string
	Attempts []Attempt
}

func (e *AggregatedError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = fmt.Sprintf("%s: %v", a.Provider, a.Err)
	}
	return fmt.Sprintf("no source available for %s on %s: %s", e.Asset, e.Network, strings.Join(reasons, "; "))
}

// Unwrap lets callers test with errors.Is(err, ports.ErrNoSourceAvailable).
func (e *AggregatedError) Unwrap() error { return ports.ErrNoSourceAvailable }

// call invokes one adapter's FetchQuote bounded by its timeout and rate
// budget.
func (o *Orchestrator) call(ctx context.Context, s slot, asset, network string) (*domain.Quote, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, fmt.Errorf("local budget exhausted: %w", ports.ErrRateLimited)
	}
	cctx, cancel := context.WithTimeout(ctx, s.desc.Timeout)
	defer cancel()
	quote, err := s.provider.FetchQuote(cctx, asset, network)
	if err != nil && cctx.Err() == context.DeadlineExceeded && !errors.Is(err, ports.ErrTimeout) {
		err = fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	}
	return quote, err
}

// callHistorical invokes one adapter's FetchHistorical bounded the same way
// and validates the returned series before accepting it.
func (o *Orchestrator) callHistorical(ctx context.Context, s slot, asset, network string, days int) (domain.CandleSeries, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, fmt.Errorf("local budget exhausted: %w", ports.ErrRateLimited)
	}
	cctx, cancel := context.WithTimeout(ctx, s.desc.Timeout)
	defer cancel()
	series, err := s.provider.FetchHistorical(cctx, asset, network, days)
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded && !errors.Is(err, ports.ErrTimeout) {
			err = fmt.Errorf("%w: %w", ports.ErrTimeout, err)
		}
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrMalformedResponse, err)
	}
	return series, nil
}

func (o *Orchestrator) logAttempt(ctx context.Context, source, op string, err error, elapsed time.Duration) {
	fields := map[string]interface{}{
		"source":     source,
		"op":         op,
		"elapsed_ms": elapsed.Milliseconds(),
		"ok":         err == nil,
	}
	if err != nil {
		fields["reason"] = err.Error()
		o.logger.Warn(ctx, "source attempt failed", fields)
		return
	}
	o.logger.Info(ctx, "source attempt succeeded", fields)
}

// usable decides whether a fetched quote satisfies the fallback contract:
// a real non-negative price, or — from a metadata-only source reached after
// every priced source failed — a quote without any price at all.
func usable(q *domain.Quote, desc ports.Descriptor) error {
	if q == nil {
		return fmt.Errorf("adapter returned no quote: %w", ports.ErrMalformedResponse)
	}
	if q.HasPrice() {
		if *q.PriceUSD < 0 {
			return fmt.Errorf("negative price %f: %w", *q.PriceUSD, ports.ErrMalformedResponse)
		}
		return nil
	}
	if desc.Capabilities.Has(domain.CapabilityPrice) {
		return fmt.Errorf("price source returned quote without price: %w", ports.ErrMalformedResponse)
	}
	// Metadata-only adapters legitimately answer with a nil price.
	return nil
}

// GetQuote returns the first usable quote, trying adapters in priority
// order. Adapter failures are logged and recovered locally; only exhaustion
// of the whole list surfaces to the caller, as an *AggregatedError.
func (o *Orchestrator) GetQuote(ctx context.Context, asset, network string) (*domain.Quote, error) {
	var attempts []Attempt
	for _, s := range o.slots {
		if !s.desc.Capabilities.Has(domain.CapabilityPrice) && !s.desc.Capabilities.Has(domain.CapabilityMetadata) {
			continue
		}
		start := time.Now()
		quote, err := o.call(ctx, s, asset, network)
		if err == nil {
			err = usable(quote, s.desc)
		}
		elapsed := time.Since(start)
		o.logAttempt(ctx, s.desc.Name, "GetQuote", err, elapsed)
		if err == nil {
			quote.Source = s.desc.Name
			return quote, nil
		}
		attempts = append(attempts, Attempt{Provider: s.desc.Name, Err: err, Reason: err.Error(), Elapsed: elapsed})
	}
	return nil, &AggregatedError{Asset: asset, Network: network, Attempts: attempts}
}

// GetQuoteWithHistorical returns a quote plus a daily candle series covering
// the lookback window. Only adapters declaring historical capability are
// eligible, and the quote and candles always come from the same adapter so
// provenance stays consistent.
func (o *Orchestrator) GetQuoteWithHistorical(ctx context.Context, asset, network string, days int) (*domain.Quote, domain.CandleSeries, error) {
	var attempts []Attempt
	for _, s := range o.slots {
		if !s.desc.Capabilities.Has(domain.CapabilityHistorical) {
			continue
		}
		start := time.Now()
		quote, err := o.call(ctx, s, asset, network)
		if err == nil {
			err = usable(quote, s.desc)
		}
		var series domain.CandleSeries
		if err == nil {
			series, err = o.callHistorical(ctx, s, asset, network, days)
		}
		elapsed := time.Since(start)
		o.logAttempt(ctx, s.desc.Name, "GetQuoteWithHistorical", err, elapsed)
		if err == nil {
			quote.Source = s.desc.Name
			return quote, series, nil
		}
		attempts = append(attempts, Attempt{Provider: s.desc.Name, Err: err, Reason: err.Error(), Elapsed: elapsed})
	}
	return nil, nil, &AggregatedError{Asset: asset, Network: network, Attempts: attempts}
}

// GetHistorical returns a validated candle series alone, with the same
// eligibility and fallback rules as GetQuoteWithHistorical.
func (o *Orchestrator) GetHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error) {
	var attempts []Attempt
	for _, s := range o.slots {
		if !s.desc.Capabilities.Has(domain.CapabilityHistorical) {
			continue
		}
		start := time.Now()
		series, err := o.callHistorical(ctx, s, asset, network, days)
		elapsed := time.Since(start)
		o.logAttempt(ctx, s.desc.Name, "GetHistorical", err, elapsed)
		if err == nil {
			return series, nil
		}
		attempts = append(attempts, Attempt{Provider: s.desc.Name, Err: err, Reason: err.Error(), Elapsed: elapsed})
	}
	return nil, &AggregatedError{Asset: asset, Network: network, Attempts: attempts}
}

// SourceResult is one adapter's answer in a cross-source comparison.
type SourceResult struct {
	Provider string        `json:"provider"`
	Quote    *domain.Quote `json:"quote,omitempty"`
	Err      string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Discrepancy is the percentage gap between two sources' prices, relative to
// the smaller of the two.
type Discrepancy struct {
	SourceA string  `json:"source_a"`
	SourceB string  `json:"source_b"`
	Percent float64 `json:"percent"`
}

// Comparison is the full diagnostic view across all price-capable sources.
// It is never used for selection.
type Comparison struct {
	Asset         string         `json:"asset"`
	Network       string         `json:"network"`
	Sources       []SourceResult `json:"sources"`
	Discrepancies []Discrepancy  `json:"discrepancies,omitempty"`
	AveragePrice  *float64       `json:"average_price,omitempty"`
	Consistent    bool           `json:"consistent"`
	Timestamp     time.Time      `json:"timestamp"`
}

// CompareAllSources queries every price-capable adapter concurrently and
// reports every outcome, successes and failures alike — nothing is
// short-circuited and no result is silently picked over another.
func (o *Orchestrator) CompareAllSources(ctx context.Context, asset, network string) *Comparison {
	eligible := make([]slot, 0, len(o.slots))
	for _, s := range o.slots {
		if s.desc.Capabilities.Has(domain.CapabilityPrice) {
			eligible = append(eligible, s)
		}
	}

	results := make([]SourceResult, len(eligible))
	var g errgroup.Group
	for i, s := range eligible {
		i, s := i, s
		g.Go(func() error {
			start := time.Now()
			quote, err := o.call(ctx, s, asset, network)
			if err == nil {
				err = usable(quote, s.desc)
			}
			elapsed := time.Since(start)
			o.logAttempt(ctx, s.desc.Name, "CompareAllSources", err, elapsed)
			res := SourceResult{Provider: s.desc.Name, Elapsed: elapsed}
			if err != nil {
				res.Err = err.Error()
			} else {
				quote.Source = s.desc.Name
				res.Quote = quote
			}
			results[i] = res
			return nil
		})
	}
	g.Wait() //nolint:errcheck // closures never return an error

	cmp := &Comparison{
		Asset:     asset,
		Network:   network,
		Sources:   results,
		Timestamp: time.Now().UTC(),
	}

	priced := make([]SourceResult, 0, len(results))
	var sum float64
	for _, r := range results {
		if r.Quote.HasPrice() {
			priced = append(priced, r)
			sum += *r.Quote.PriceUSD
		}
	}
	if len(priced) == 0 {
		return cmp
	}
	avg := sum / float64(len(priced))
	cmp.AveragePrice = &avg

	var maxPct float64
	for i := 0; i < len(priced); i++ {
		for j := i + 1; j < len(priced); j++ {
			pct := discrepancyPct(*priced[i].Quote.PriceUSD, *priced[j].Quote.PriceUSD)
			cmp.Discrepancies = append(cmp.Discrepancies, Discrepancy{
				SourceA: priced[i].Provider,
				SourceB: priced[j].Provider,
				Percent: pct,
			})
			if pct > maxPct {
				maxPct = pct
			}
		}
	}
	cmp.Consistent = maxPct < 5
	return cmp
}

// discrepancyPct is the absolute price gap relative to the smaller price:
// 1.00 vs 1.05 reads as a 5% discrepancy.
func discrepancyPct(a, b float64) float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == 0 {
		if hi == 0 {
			return 0
		}
		return 100
	}
	return (hi - lo) / lo * 100
}

// HealthState classifies one adapter's condition.
type HealthState string

const (
	HealthUp       HealthState = "up"
	HealthDegraded HealthState = "degraded"
	HealthDown     HealthState = "down"
)

// Health is the observed status of one adapter.
type Health struct {
	Status  HealthState   `json:"status"`
	Latency time.Duration `json:"latency"`
	Err     string        `json:"error,omitempty"`
}

// HealthCheck pings every adapter concurrently with the canonical probe
// query. It always returns exactly one entry per configured adapter and
// never returns an error: unreachable adapters are reported as down.
func (o *Orchestrator) HealthCheck(ctx context.Context) map[string]Health {
	statuses := make([]Health, len(o.slots))
	var g errgroup.Group
	for i, s := range o.slots {
		i, s := i, s
		g.Go(func() error {
			start := time.Now()
			quote, err := o.call(ctx, s, o.healthProbe.Asset, o.healthProbe.Network)
			if err == nil {
				err = usable(quote, s.desc)
			}
			latency := time.Since(start)
			h := Health{Latency: latency}
			switch {
			case err != nil:
				h.Status = HealthDown
				h.Err = err.Error()
			case latency > o.degradedLatency:
				h.Status = HealthDegraded
			default:
				h.Status = HealthUp
			}
			statuses[i] = h
			return nil
		})
	}
	g.Wait() //nolint:errcheck // closures never return an error

	out := make(map[string]Health, len(o.slots))
	for i, s := range o.slots {
		out[s.desc.Name] = statuses[i]
	}
	return out
}

// BatchResult is one entry of a batch quote run: the input reference plus
// either its quote or its error.
type BatchResult struct {
	Ref   domain.AssetRef `json:"ref"`
	Quote *domain.Quote   `json:"quote,omitempty"`
	Err   error           `json:"-"`
}

// BatchQuotes runs GetQuote for each reference concurrently, capped at the
// configured concurrency so large batches do not blow through any single
// adapter's rate budget. Partial failure is normal: every input gets its own
// result-or-error, one failing asset never fails the batch, and one item's
// failure never cancels its siblings.
func (o *Orchestrator) BatchQuotes(ctx context.Context, refs []domain.AssetRef) []BatchResult {
	results := make([]BatchResult, len(refs))
	var g errgroup.Group
	g.SetLimit(o.batchConcurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			quote, err := o.GetQuote(ctx, ref.Asset, ref.Network)
			results[i] = BatchResult{Ref: ref, Quote: quote, Err: err}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // closures never return an error
	return results
}

// Descriptors returns the static adapter configuration in fallback order,
// for operational introspection.
func (o *Orchestrator) Descriptors() []ports.Descriptor {
	out := make([]ports.Descriptor, len(o.slots))
	for i, s := range o.slots {
		out[i] = s.desc
	}
	return out
}
