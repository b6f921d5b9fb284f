package portfolio

import (
	"context"
	"fmt"
	"time"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/orchestrator"
	"tokenpulse/internal/ports"
)

// Token is one tracked portfolio entry.
type Token struct {
	Symbol string          `json:"symbol"`
	Pair   string          `json:"pair,omitempty"`
	Ref    domain.AssetRef `json:"ref"`
}

// Quoter is the slice of the orchestrator the portfolio service needs.
type Quoter interface {
	BatchQuotes(ctx context.Context, refs []domain.AssetRef) []orchestrator.BatchResult
}

// Config holds configuration for the portfolio service.
type Config struct {
	Name        string
	Logger      ports.Logger
	MainToken   Token
	QuoteTokens []Token
}

// Service aggregates quotes across a static tracked-token list: one main
// token plus the quote tokens it is paired with. It holds no state between
// calls; every summary is a fresh fan-out through the orchestrator.
type Service struct {
	cfg    Config
	quoter Quoter
	logger ports.Logger
}

// New creates a portfolio service over the given quoter.
func New(cfg Config, quoter Quoter) (*Service, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required: %w", ports.ErrConfigurationError)
	}
	if quoter == nil {
		return nil, fmt.Errorf("quoter is required: %w", ports.ErrConfigurationError)
	}
	if cfg.MainToken.Ref.Asset == "" {
		return nil, fmt.Errorf("main token is required: %w", ports.ErrConfigurationError)
	}
	if cfg.Name == "" {
		cfg.Name = cfg.MainToken.Symbol + " portfolio"
	}
	return &Service{cfg: cfg, quoter: quoter, logger: cfg.Logger}, nil
}

// TokenResult is one tracked token's outcome in a portfolio summary.
type TokenResult struct {
	Token Token         `json:"token"`
	Quote *domain.Quote `json:"quote,omitempty"`
	Err   string        `json:"error,omitempty"`
}

// Stats aggregates the success/failure and value totals of one summary run.
type Stats struct {
	TotalTokens       int     `json:"total_tokens"`
	Successful        int     `json:"successful"`
	Failed            int     `json:"failed"`
	SuccessRatePct    float64 `json:"success_rate_pct"`
	TotalLiquidityUSD float64 `json:"total_liquidity_usd"`
	TotalVolume24hUSD float64 `json:"total_volume_24h_usd"`
}

// Summary is the full portfolio view: the main token, every quote token and
// the aggregate statistics.
type Summary struct {
	Name        string        `json:"portfolio_name"`
	Timestamp   time.Time     `json:"timestamp"`
	MainToken   TokenResult   `json:"main_token"`
	QuoteTokens []TokenResult `json:"quote_tokens"`
	Stats       Stats         `json:"statistics"`
}

// Tokens returns the full tracked list, main token first.
func (s *Service) Tokens() []Token {
	out := make([]Token, 0, len(s.cfg.QuoteTokens)+1)
	out = append(out, s.cfg.MainToken)
	return append(out, s.cfg.QuoteTokens...)
}

// Summary fetches every tracked token in one batch and aggregates the
// outcome. A token that no source can price appears with its error; it never
// fails the summary.
func (s *Service) Summary(ctx context.Context) *Summary {
	tokens := s.Tokens()
	refs := make([]domain.AssetRef, len(tokens))
	for i, tok := range tokens {
		refs[i] = tok.Ref
	}

	results := s.quoter.BatchQuotes(ctx, refs)

	summary := &Summary{
		Name:        s.cfg.Name,
		Timestamp:   time.Now().UTC(),
		QuoteTokens: make([]TokenResult, 0, len(s.cfg.QuoteTokens)),
	}

	for i, res := range results {
		tr := TokenResult{Token: tokens[i], Quote: res.Quote}
		if res.Err != nil {
			tr.Err = res.Err.Error()
			summary.Stats.Failed++
			s.logger.Warn(ctx, "portfolio token failed", map[string]interface{}{
				"symbol": tokens[i].Symbol,
				"reason": res.Err.Error(),
			})
		} else {
			summary.Stats.Successful++
			if res.Quote.LiquidityUSD != nil {
				summary.Stats.TotalLiquidityUSD += *res.Quote.LiquidityUSD
			}
			if res.Quote.Volume24hUSD != nil {
				summary.Stats.TotalVolume24hUSD += *res.Quote.Volume24hUSD
			}
		}

		if i == 0 {
			summary.MainToken = tr
		} else {
			summary.QuoteTokens = append(summary.QuoteTokens, tr)
		}
	}

	summary.Stats.TotalTokens = len(tokens)
	if summary.Stats.TotalTokens > 0 {
		summary.Stats.SuccessRatePct = float64(summary.Stats.Successful) / float64(summary.Stats.TotalTokens) * 100
	}
	return summary
}
