package defillama

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/httpx"
	"tokenpulse/internal/ports"
)

const defaultBaseURL = "https://coins.llama.fi"

// chainMap translates canonical network names to DeFiLlama chain IDs.
var chainMap = map[string]string{
	"ethereum":  "ethereum",
	"polygon":   "polygon",
	"base":      "base",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"bsc":       "bsc",
	"avalanche": "avax",
}

// Config holds configuration specific to the DeFiLlama adapter.
type Config struct {
	Name    string
	BaseURL string
	// SearchWidth is how far around the current timestamp DeFiLlama may
	// look for a price point (its API default is too narrow for exotic
	// tokens).
	SearchWidth string
}

// Client prices exotic and hard-to-price tokens via DeFiLlama. Responses key
// coin data by "{chain}:{address}", so the payloads are traversed with gjson
// rather than static structs.
type Client struct {
	cfg  Config
	http *httpx.Client
}

// New creates a new DeFiLlama adapter.
func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "defillama"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SearchWidth == "" {
		cfg.SearchWidth = "4h"
	}
	return &Client{cfg: cfg, http: hc}
}

// Name returns the adapter's provenance name.
func (c *Client) Name() string { return c.cfg.Name }

// coinID formats the DeFiLlama coin identifier ("chain:address").
func coinID(asset, network string) string {
	chain, ok := chainMap[strings.ToLower(network)]
	if !ok {
		chain = strings.ToLower(network)
	}
	return chain + ":" + strings.ToLower(asset)
}

// FetchQuote returns the current price for a token. DeFiLlama carries no
// volume or liquidity data, so those fields stay nil.
func (c *Client) FetchQuote(ctx context.Context, asset, network string) (*domain.Quote, error) {
	id := coinID(asset, network)
	url := fmt.Sprintf("%s/prices/current/%s?searchWidth=%s", c.cfg.BaseURL, id, c.cfg.SearchWidth)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	coin := gjson.GetBytes(body, "coins").Get(escapeKey(id))
	if !coin.Exists() {
		return nil, fmt.Errorf("no price data for %s: %w", id, ports.ErrNotFound)
	}
	price := coin.Get("price")
	if !price.Exists() {
		return nil, fmt.Errorf("coin entry for %s has no price: %w", id, ports.ErrMalformedResponse)
	}

	p := price.Float()
	return &domain.Quote{
		Asset:     asset,
		Network:   network,
		Symbol:    coin.Get("symbol").String(),
		PriceUSD:  &p,
		Source:    c.cfg.Name,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchHistorical returns daily price points from the /chart endpoint,
// synthesized into flat candles (open=high=low=close, zero volume) since
// DeFiLlama serves prices, not OHLCV.
func (c *Client) FetchHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error) {
	id := coinID(asset, network)
	url := fmt.Sprintf("%s/chart/%s?span=%d&period=1d", c.cfg.BaseURL, id, days)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	coin := gjson.GetBytes(body, "coins").Get(escapeKey(id))
	if !coin.Exists() {
		return nil, fmt.Errorf("no historical data for %s: %w", id, ports.ErrNotFound)
	}

	prices := coin.Get("prices").Array()
	series := make(domain.CandleSeries, 0, len(prices))
	for _, pt := range prices {
		ts := pt.Get("timestamp").Int()
		price := pt.Get("price").Float()
		if ts <= 0 {
			return nil, fmt.Errorf("price point without timestamp: %w", ports.ErrMalformedResponse)
		}
		series = append(series, domain.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
		})
	}
	return series, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", ports.ErrInvalidRequest, err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("defillama request: %w: %w", ports.ErrTimeout, err)
		}
		return nil, fmt.Errorf("defillama request: %w: %w", ports.ErrUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("defillama: %w", ports.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("defillama: %w", ports.ErrRateLimited)
	default:
		return nil, fmt.Errorf("defillama: unexpected status %d: %w", resp.StatusCode, ports.ErrUnknown)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", ports.ErrMalformedResponse, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json: %w", ports.ErrMalformedResponse)
	}
	return body, nil
}

// escapeKey protects the "chain:address" map key from gjson path syntax
// (dots appear in some chain names).
func escapeKey(key string) string {
	key = strings.ReplaceAll(key, ".", `\.`)
	return strings.ReplaceAll(key, "*", `\*`)
}
