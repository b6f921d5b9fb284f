package geckoterminal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/internal/httpx"
	"tokenpulse/internal/ports"
)

const (
	tokenBody = `{
		"data": {
			"attributes": {
				"name": "Wrapped Ether",
				"symbol": "WETH",
				"price_usd": "2345.67",
				"fdv_usd": "1000000",
				"image_url": "https://example.com/weth.png",
				"price_change_percentage": {"h24": "-1.5"}
			}
		}
	}`
	poolsBody = `{
		"data": [
			{
				"id": "eth_0xpooladdr",
				"attributes": {
					"name": "WETH/USDC",
					"reserve_in_usd": "500000",
					"volume_usd": {"h24": "120000"}
				}
			}
		]
	}`
	ohlcvBody = `{
		"data": {
			"attributes": {
				"ohlcv_list": [
					[1735776000, 101, 103, 100, 102, 50],
					[1735689600, 100, 102, 99, 101, 40]
				]
			}
		}
	}`
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, httpx.New(5*time.Second))
}

func TestFetchQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/pools"):
			w.Write([]byte(poolsBody))
		default:
			assert.Contains(t, r.URL.Path, "/networks/eth/tokens/0xweth")
			w.Write([]byte(tokenBody))
		}
	})

	quote, err := client.FetchQuote(context.Background(), "0xWETH", "ethereum")
	require.NoError(t, err)

	assert.Equal(t, "Wrapped Ether", quote.Name)
	assert.Equal(t, "WETH", quote.Symbol)
	require.NotNil(t, quote.PriceUSD)
	assert.Equal(t, 2345.67, *quote.PriceUSD)
	require.NotNil(t, quote.Change24hPct)
	assert.Equal(t, -1.5, *quote.Change24hPct)
	require.NotNil(t, quote.Volume24hUSD)
	assert.Equal(t, 120000.0, *quote.Volume24hUSD)
	require.NotNil(t, quote.LiquidityUSD)
	assert.Equal(t, 500000.0, *quote.LiquidityUSD)
	assert.Equal(t, "geckoterminal", quote.Source)
}

func TestFetchQuote_TokenWithoutPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{"name":"Dead Token","symbol":"DEAD","price_usd":""}}}`))
	})

	_, err := client.FetchQuote(context.Background(), "0xdead", "ethereum")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFetchQuote_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "404 maps to not found", status: http.StatusNotFound, expected: ports.ErrNotFound},
		{name: "429 maps to rate limited", status: http.StatusTooManyRequests, expected: ports.ErrRateLimited},
		{name: "503 maps to unknown", status: http.StatusServiceUnavailable, expected: ports.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.FetchQuote(context.Background(), "0xabc", "ethereum")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestFetchQuote_GarbledBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [not json`))
	})

	_, err := client.FetchQuote(context.Background(), "0xabc", "ethereum")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrMalformedResponse)
}

func TestFetchHistorical(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/ohlcv/"):
			assert.Contains(t, r.URL.Path, "/pools/0xpooladdr/")
			w.Write([]byte(ohlcvBody))
		case strings.HasSuffix(r.URL.Path, "/pools"):
			w.Write([]byte(poolsBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	series, err := client.FetchHistorical(context.Background(), "0xweth", "ethereum", 30)
	require.NoError(t, err)
	require.Len(t, series, 2)

	// Rows arrive newest first and must come back ascending.
	assert.True(t, series[0].Timestamp.Before(series[1].Timestamp))
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 102.0, series[1].Close)
	assert.NoError(t, series.Validate())
}

func TestFetchHistorical_NoPools(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.FetchHistorical(context.Background(), "0xorphan", "ethereum", 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestNetworkMapping(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})

	client.FetchQuote(context.Background(), "0xabc", "Polygon") //nolint:errcheck
	assert.Contains(t, gotPath, "/networks/polygon_pos/")

	// Unmapped networks pass through lower-cased.
	client.FetchQuote(context.Background(), "0xabc", "Fantom") //nolint:errcheck
	assert.Contains(t, gotPath, "/networks/fantom/")
}

func TestPoolAddress(t *testing.T) {
	tests := []struct {
		id       string
		expected string
	}{
		{id: "eth_0xabc", expected: "0xabc"},
		{id: "polygon_pos_0xdef", expected: "0xdef"},
		{id: "noseparator", expected: ""},
		{id: "trailing_", expected: ""},
	}
	for _, tt := range tests {
		p := &pool{ID: tt.id}
		assert.Equal(t, tt.expected, p.Address(), "id %q", tt.id)
	}
}
