package geckoterminal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/httpx"
	"tokenpulse/internal/ports"
)

const defaultBaseURL = "https://api.geckoterminal.com/api/v2"

// networkMap translates canonical network names to GeckoTerminal network IDs.
// Unmapped networks pass through lower-cased.
var networkMap = map[string]string{
	"ethereum":  "eth",
	"polygon":   "polygon_pos",
	"base":      "base",
	"arbitrum":  "arbitrum",
	"optimism":  "optimism",
	"bsc":       "bsc",
	"avalanche": "avax",
}

// Config holds configuration specific to the GeckoTerminal adapter.
type Config struct {
	Name    string
	BaseURL string
}

// Client fetches DEX token prices and OHLCV candles from GeckoTerminal.
// Free tier, no API key, covers most DEX-traded tokens.
type Client struct {
	cfg  Config
	http *httpx.Client
}

// New creates a new GeckoTerminal adapter.
func New(cfg Config, hc *httpx.Client) *Client {
	if cfg.Name == "" {
		cfg.Name = "geckoterminal"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, http: hc}
}

// Name returns the adapter's provenance name.
func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) networkID(network string) string {
	if id, ok := networkMap[strings.ToLower(network)]; ok {
		return id
	}
	return strings.ToLower(network)
}

// FetchQuote returns the current quote for a token, enriched with volume and
// liquidity from its most liquid pool.
func (c *Client) FetchQuote(ctx context.Context, asset, network string) (*domain.Quote, error) {
	var tokenResp tokenResponse
	url := fmt.Sprintf("%s/networks/%s/tokens/%s", c.cfg.BaseURL, c.networkID(network), strings.ToLower(asset))
	if err := c.getJSON(ctx, url, &tokenResp); err != nil {
		return nil, err
	}

	attrs := tokenResp.Data.Attributes
	quote := &domain.Quote{
		Asset:     asset,
		Network:   network,
		Name:      attrs.Name,
		Symbol:    attrs.Symbol,
		IconURL:   attrs.ImageURL,
		Source:    c.cfg.Name,
		FetchedAt: time.Now().UTC(),
	}

	price, err := parseOptionalFloat(attrs.PriceUSD)
	if err != nil {
		return nil, fmt.Errorf("price_usd %q: %w", attrs.PriceUSD, ports.ErrMalformedResponse)
	}
	if price == nil {
		// Token exists but has no price; treat like an unknown asset so the
		// orchestrator falls through to the next source.
		return nil, fmt.Errorf("token %s has no price on %s: %w", asset, network, ports.ErrNotFound)
	}
	quote.PriceUSD = price

	if change, err := parseOptionalFloat(attrs.PriceChangePercentage.H24); err == nil {
		quote.Change24hPct = change
	}
	if fdv, err := parseOptionalFloat(attrs.FDVUSD); err == nil {
		quote.FDVUSD = fdv
	}

	// Top-pool volume and liquidity are best-effort enrichment.
	if pool, err := c.topPool(ctx, asset, network); err == nil && pool != nil {
		if vol, err := parseOptionalFloat(pool.Attributes.VolumeUSD.H24); err == nil {
			quote.Volume24hUSD = vol
		}
		if reserve, err := parseOptionalFloat(pool.Attributes.ReserveInUSD); err == nil {
			quote.LiquidityUSD = reserve
		}
	}

	return quote, nil
}

// FetchHistorical returns up to `days` daily candles for the token's most
// liquid pool.
func (c *Client) FetchHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error) {
	pool, err := c.topPool(ctx, asset, network)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("no pools for token %s on %s: %w", asset, network, ports.ErrNotFound)
	}
	poolAddr := pool.Address()
	if poolAddr == "" {
		return nil, fmt.Errorf("pool id %q: %w", pool.ID, ports.ErrMalformedResponse)
	}

	var ohlcvResp ohlcvResponse
	url := fmt.Sprintf("%s/networks/%s/pools/%s/ohlcv/day?aggregate=1&limit=%d&currency=usd",
		c.cfg.BaseURL, c.networkID(network), strings.ToLower(poolAddr), days)
	if err := c.getJSON(ctx, url, &ohlcvResp); err != nil {
		return nil, err
	}

	list := ohlcvResp.Data.Attributes.OHLCVList
	series := make(domain.CandleSeries, 0, len(list))
	for _, row := range list {
		if len(row) < 6 {
			return nil, fmt.Errorf("ohlcv row has %d fields: %w", len(row), ports.ErrMalformedResponse)
		}
		series = append(series, domain.Candle{
			Timestamp: time.Unix(int64(row[0]), 0).UTC(),
			Open:      row[1],
			High:      row[2],
			Low:       row[3],
			Close:     row[4],
			Volume:    row[5],
		})
	}
	// GeckoTerminal returns newest first; the canonical series is ascending.
	sort.Slice(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
	return series, nil
}

// topPool returns the token's most liquid pool, or nil when the token has
// no pools.
func (c *Client) topPool(ctx context.Context, asset, network string) (*pool, error) {
	var poolsResp poolsResponse
	url := fmt.Sprintf("%s/networks/%s/tokens/%s/pools?page=1", c.cfg.BaseURL, c.networkID(network), strings.ToLower(asset))
	if err := c.getJSON(ctx, url, &poolsResp); err != nil {
		return nil, err
	}
	if len(poolsResp.Data) == 0 {
		return nil, nil
	}
	return &poolsResp.Data[0], nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w: %w", ports.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("geckoterminal request: %w: %w", ports.ErrTimeout, err)
		}
		return fmt.Errorf("geckoterminal request: %w: %w", ports.ErrUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("geckoterminal: %w", ports.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("geckoterminal: %w", ports.ErrRateLimited)
	default:
		return fmt.Errorf("geckoterminal: unexpected status %d: %w", resp.StatusCode, ports.ErrUnknown)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", ports.ErrMalformedResponse, err)
	}
	return nil
}

// parseOptionalFloat parses a possibly empty numeric string; empty means
// "not provided" and maps to nil.
func parseOptionalFloat(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --- Response shapes ---

type tokenResponse struct {
	Data struct {
		Attributes struct {
			Name                  string `json:"name"`
			Symbol                string `json:"symbol"`
			PriceUSD              string `json:"price_usd"`
			FDVUSD                string `json:"fdv_usd"`
			ImageURL              string `json:"image_url"`
			PriceChangePercentage struct {
				H24 string `json:"h24"`
			} `json:"price_change_percentage"`
		} `json:"attributes"`
	} `json:"data"`
}

type pool struct {
	ID         string `json:"id"`
	Attributes struct {
		Name         string `json:"name"`
		ReserveInUSD string `json:"reserve_in_usd"`
		VolumeUSD    struct {
			H24 string `json:"h24"`
		} `json:"volume_usd"`
	} `json:"attributes"`
}

// Address extracts the pool contract address from the "network_address" ID.
func (p *pool) Address() string {
	if idx := strings.LastIndex(p.ID, "_"); idx >= 0 && idx < len(p.ID)-1 {
		return p.ID[idx+1:]
	}
	return ""
}

type poolsResponse struct {
	Data []pool `json:"data"`
}

type ohlcvResponse struct {
	Data struct {
		Attributes struct {
			OHLCVList [][]float64 `json:"ohlcv_list"`
		} `json:"attributes"`
	} `json:"data"`
}
