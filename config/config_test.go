package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 2*time.Second, cfg.DegradedLatency)
	assert.Equal(t, 5, cfg.BatchConcurrency)
	assert.Equal(t, 30, cfg.HistoricalDays)

	assert.Equal(t, "DDD Portfolio", cfg.PortfolioName)
	assert.Equal(t, "polygon", cfg.Network)
	assert.Equal(t, "DDD", cfg.MainToken.Symbol)
	assert.Equal(t, "0x4bf82cf0d6b2afc87367052b793097153c859d38", cfg.MainToken.Asset)
	assert.Len(t, cfg.QuoteTokens, 9)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "3")
	t.Setenv("BATCH_CONCURRENCY", "2")
	t.Setenv("MAIN_TOKEN", "WETH:0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2@ethereum")
	t.Setenv("QUOTE_TOKENS", "USDC:0x2791bca1f2de4661ed88a30c99a7a9449aa84174")
	t.Setenv("BINANCE_SYMBOL_MAP", "weth=ethusdt,0xbtc=btcusdt")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 2, cfg.BatchConcurrency)

	assert.Equal(t, "WETH", cfg.MainToken.Symbol)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", cfg.MainToken.Asset)
	assert.Equal(t, "ethereum", cfg.MainToken.Network)

	require.Len(t, cfg.QuoteTokens, 1)
	assert.Equal(t, "polygon", cfg.QuoteTokens[0].Network, "tokens inherit the portfolio network")

	assert.Equal(t, map[string]string{"weth": "ETHUSDT", "0xbtc": "BTCUSDT"}, cfg.BinanceSymbolMap)
}

func TestLoadConfig_CollectsErrors(t *testing.T) {
	t.Setenv("BATCH_CONCURRENCY", "0")
	t.Setenv("MAIN_TOKEN", "nonsense-without-separator")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_CONCURRENCY")
	assert.Contains(t, err.Error(), "MAIN_TOKEN")
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name        string
		entry       string
		expectError bool
		symbol      string
		asset       string
		network     string
	}{
		{name: "plain entry", entry: "NCT:0xFC983c854683b562C6E0f858a15b32698b32bA45", symbol: "NCT", asset: "0xfc983c854683b562c6e0f858a15b32698b32ba45", network: "polygon"},
		{name: "pinned network", entry: "WETH:0xabc@base", symbol: "WETH", asset: "0xabc", network: "base"},
		{name: "symbol with dash", entry: "JLT-F24:0x4faf57a632bd809974358a5fff9ae4aec5a51b7d", symbol: "JLT-F24", asset: "0x4faf57a632bd809974358a5fff9ae4aec5a51b7d", network: "polygon"},
		{name: "missing contract", entry: "NCT:", expectError: true},
		{name: "missing separator", entry: "NCT", expectError: true},
		{name: "empty", entry: "  ", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := parseToken(tt.entry, "polygon")
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, tok.Symbol)
			assert.Equal(t, tt.asset, tok.Asset)
			assert.Equal(t, tt.network, tok.Network)
		})
	}
}

func TestParseSymbolMap(t *testing.T) {
	t.Run("empty is allowed", func(t *testing.T) {
		m, err := parseSymbolMap("")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("bad entry is rejected", func(t *testing.T) {
		_, err := parseSymbolMap("weth=ethusdt,broken")
		require.Error(t, err)
	})
}
