package portfolio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/orchestrator"
	"tokenpulse/internal/ports"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// mockQuoter prices the assets it knows and fails the rest.
type mockQuoter struct {
	prices    map[string]float64
	liquidity map[string]float64
	volume    map[string]float64
}

func (m *mockQuoter) BatchQuotes(ctx context.Context, refs []domain.AssetRef) []orchestrator.BatchResult {
	results := make([]orchestrator.BatchResult, len(refs))
	for i, ref := range refs {
		price, ok := m.prices[ref.Asset]
		if !ok {
			results[i] = orchestrator.BatchResult{
				Ref: ref,
				Err: fmt.Errorf("no source for %s: %w", ref.Asset, ports.ErrNoSourceAvailable),
			}
			continue
		}
		p := price
		q := &domain.Quote{
			Asset:     ref.Asset,
			Network:   ref.Network,
			PriceUSD:  &p,
			Source:    "mock",
			FetchedAt: time.Now().UTC(),
		}
		if l, ok := m.liquidity[ref.Asset]; ok {
			lv := l
			q.LiquidityUSD = &lv
		}
		if v, ok := m.volume[ref.Asset]; ok {
			vv := v
			q.Volume24hUSD = &vv
		}
		results[i] = orchestrator.BatchResult{Ref: ref, Quote: q}
	}
	return results
}

func testTokens() (Token, []Token) {
	main := Token{Symbol: "DDD", Ref: domain.AssetRef{Asset: "0xmain", Network: "polygon"}}
	quotes := []Token{
		{Symbol: "NCT", Pair: "DDD/NCT", Ref: domain.AssetRef{Asset: "0xnct", Network: "polygon"}},
		{Symbol: "CCC", Pair: "DDD/CCC", Ref: domain.AssetRef{Asset: "0xccc", Network: "polygon"}},
	}
	return main, quotes
}

func TestNew_Validation(t *testing.T) {
	main, quotes := testTokens()
	quoter := &mockQuoter{}

	t.Run("requires a logger", func(t *testing.T) {
		_, err := New(Config{MainToken: main, QuoteTokens: quotes}, quoter)
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrConfigurationError)
	})

	t.Run("requires a quoter", func(t *testing.T) {
		_, err := New(Config{Logger: mockLogger{}, MainToken: main}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrConfigurationError)
	})

	t.Run("requires a main token", func(t *testing.T) {
		_, err := New(Config{Logger: mockLogger{}}, quoter)
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrConfigurationError)
	})

	t.Run("derives a default name", func(t *testing.T) {
		svc, err := New(Config{Logger: mockLogger{}, MainToken: main}, quoter)
		require.NoError(t, err)
		assert.Equal(t, "DDD portfolio", svc.Summary(context.Background()).Name)
	})
}

func TestSummary(t *testing.T) {
	main, quotes := testTokens()
	quoter := &mockQuoter{
		prices:    map[string]float64{"0xmain": 0.25, "0xnct": 0.60},
		liquidity: map[string]float64{"0xmain": 10000, "0xnct": 5000},
		volume:    map[string]float64{"0xmain": 1200, "0xnct": 300},
	}

	svc, err := New(Config{
		Name:        "DDD Portfolio",
		Logger:      mockLogger{},
		MainToken:   main,
		QuoteTokens: quotes,
	}, quoter)
	require.NoError(t, err)

	summary := svc.Summary(context.Background())

	assert.Equal(t, "DDD Portfolio", summary.Name)
	require.NotNil(t, summary.MainToken.Quote)
	assert.Equal(t, 0.25, *summary.MainToken.Quote.PriceUSD)
	require.Len(t, summary.QuoteTokens, 2)

	// NCT priced, CCC unknown to every source: partial failure is normal.
	assert.NotNil(t, summary.QuoteTokens[0].Quote)
	assert.Nil(t, summary.QuoteTokens[1].Quote)
	assert.NotEmpty(t, summary.QuoteTokens[1].Err)

	assert.Equal(t, 3, summary.Stats.TotalTokens)
	assert.Equal(t, 2, summary.Stats.Successful)
	assert.Equal(t, 1, summary.Stats.Failed)
	assert.InDelta(t, 66.6, summary.Stats.SuccessRatePct, 0.1)
	assert.Equal(t, 15000.0, summary.Stats.TotalLiquidityUSD)
	assert.Equal(t, 1500.0, summary.Stats.TotalVolume24hUSD)
}

func TestTokens_MainFirst(t *testing.T) {
	main, quotes := testTokens()
	svc, err := New(Config{Logger: mockLogger{}, MainToken: main, QuoteTokens: quotes}, &mockQuoter{})
	require.NoError(t, err)

	tokens := svc.Tokens()
	require.Len(t, tokens, 3)
	assert.Equal(t, "DDD", tokens[0].Symbol)
}
