package alchemy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/httpx"
	"tokenpulse/internal/ports"
)

// endpointTemplates maps canonical network names to Alchemy RPC endpoints.
var endpointTemplates = map[string]string{
	"ethereum": "https://eth-mainnet.g.alchemy.com/v2/%s",
	"polygon":  "https://polygon-mainnet.g.alchemy.com/v2/%s",
	"base":     "https://base-mainnet.g.alchemy.com/v2/%s",
	"arbitrum": "https://arb-mainnet.g.alchemy.com/v2/%s",
}

// Config holds configuration specific to the Alchemy adapter.
type Config struct {
	Name   string
	APIKey string
	// BaseURL overrides the per-network endpoint, mainly for tests.
	BaseURL string
}

// Client is a metadata-only source: Alchemy serves token name/symbol/logo
// via JSON-RPC but no price data. The orchestrator reaches it as the last
// resort so a caller at least learns what the asset is.
type Client struct {
	cfg  Config
	http *httpx.Client
}

// New creates a new Alchemy adapter.
func New(cfg Config, hc *httpx.Client) (*Client, error) {
	if cfg.Name == "" {
		cfg.Name = "alchemy"
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("alchemy API key is required: %w", ports.ErrConfigurationError)
	}
	return &Client{cfg: cfg, http: hc}, nil
}

// Name returns the adapter's provenance name.
func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) endpoint(network string) (string, error) {
	if c.cfg.BaseURL != "" {
		return c.cfg.BaseURL, nil
	}
	tmpl, ok := endpointTemplates[strings.ToLower(network)]
	if !ok {
		return "", fmt.Errorf("alchemy has no endpoint for network %q: %w", network, ports.ErrUnsupportedNetwork)
	}
	return fmt.Sprintf(tmpl, c.cfg.APIKey), nil
}

// FetchQuote returns a metadata-only quote: name, symbol and logo with a nil
// price.
func (c *Client) FetchQuote(ctx context.Context, asset, network string) (*domain.Quote, error) {
	url, err := c.endpoint(network)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(rpcRequest{
		ID:      1,
		JSONRPC: "2.0",
		Method:  "alchemy_getTokenMetadata",
		Params:  []string{asset},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w: %w", ports.ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("alchemy request: %w: %w", ports.ErrTimeout, err)
		}
		return nil, fmt.Errorf("alchemy request: %w: %w", ports.ErrUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("alchemy: %w", ports.ErrRateLimited)
	default:
		return nil, fmt.Errorf("alchemy: unexpected status %d: %w", resp.StatusCode, ports.ErrUnknown)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", ports.ErrMalformedResponse, err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("alchemy rpc error %d: %s: %w", rpcResp.Error.Code, rpcResp.Error.Message, ports.ErrUnknown)
	}
	if rpcResp.Result == nil || (rpcResp.Result.Name == "" && rpcResp.Result.Symbol == "") {
		return nil, fmt.Errorf("no metadata for %s: %w", asset, ports.ErrNotFound)
	}

	return &domain.Quote{
		Asset:     asset,
		Network:   network,
		Name:      rpcResp.Result.Name,
		Symbol:    rpcResp.Result.Symbol,
		IconURL:   rpcResp.Result.Logo,
		Source:    c.cfg.Name,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchHistorical is not supported; Alchemy serves no price data at all.
func (c *Client) FetchHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error) {
	return nil, ports.ErrHistoricalUnsupported
}

type rpcRequest struct {
	ID      int      `json:"id"`
	JSONRPC string   `json:"jsonrpc"`
	Method  string   `json:"method"`
	Params  []string `json:"params"`
}

type rpcResponse struct {
	Result *struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
		Logo     string `json:"logo"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
