package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokenpulse/internal/domain"
	"tokenpulse/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// Client implements the ports.QuoteProvider interface against the Binance
// spot API. It only serves assets that have a configured trading-pair
// mapping (e.g. WETH -> ETHUSDT); everything else is unknown to it, which
// makes it a useful high-quality source for majors without ever answering
// for exotic tokens it cannot price.
type Client struct {
	name      string
	client    *binance.Client
	logger    ports.Logger
	symbolMap map[string]string
}

// Config holds configuration specific to the Binance adapter.
type Config struct {
	Name      string
	APIKey    string
	SecretKey string
	Logger    ports.Logger
	// SymbolMap maps an asset reference (contract address or symbol,
	// lower-cased) to a Binance trading pair.
	SymbolMap map[string]string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// New creates a new Binance adapter. Public market-data endpoints work
// without API keys.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client: %w", ports.ErrConfigurationError)
	}
	if len(cfg.SymbolMap) == 0 {
		return nil, fmt.Errorf("symbol map is required for Binance client: %w", ports.ErrConfigurationError)
	}
	if cfg.Name == "" {
		cfg.Name = "binance"
	}

	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}

	normalized := make(map[string]string, len(cfg.SymbolMap))
	for asset, pair := range cfg.SymbolMap {
		normalized[strings.ToLower(asset)] = strings.ToUpper(pair)
	}

	return &Client{
		name:      cfg.Name,
		client:    client,
		logger:    cfg.Logger,
		symbolMap: normalized,
	}, nil
}

// Name returns the adapter's provenance name.
func (c *Client) Name() string { return c.name }

func (c *Client) pairFor(asset string) (string, error) {
	pair, ok := c.symbolMap[strings.ToLower(asset)]
	if !ok {
		return "", fmt.Errorf("no Binance pair configured for %q: %w", asset, ports.ErrNotFound)
	}
	return pair, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1121: // Invalid symbol
			mappedErr = ports.ErrNotFound
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106: // Parameter/request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// FetchQuote returns the 24h ticker for the asset's configured trading pair.
func (c *Client) FetchQuote(ctx context.Context, asset, network string) (*domain.Quote, error) {
	op := "FetchQuote"
	pair, err := c.pairFor(asset)
	if err != nil {
		return nil, err
	}

	stats, err := c.client.NewListPriceChangeStatsService().Symbol(pair).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no ticker data for pair %s: %w", pair, ports.ErrNotFound)
	}

	s := stats[0]
	price, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price %q: %w: %w", s.LastPrice, ports.ErrMalformedResponse, err)
		c.logger.Error(ctx, parseErr, op+" parse failure", map[string]interface{}{"pair": pair})
		return nil, parseErr
	}

	quote := &domain.Quote{
		Asset:     asset,
		Network:   network,
		Symbol:    pair,
		PriceUSD:  &price,
		Source:    c.name,
		FetchedAt: time.Now().UTC(),
	}
	if change, err := strconv.ParseFloat(s.PriceChangePercent, 64); err == nil {
		quote.Change24hPct = &change
	}
	if vol, err := strconv.ParseFloat(s.QuoteVolume, 64); err == nil {
		quote.Volume24hUSD = &vol
	}
	return quote, nil
}

// FetchHistorical returns daily candles for the asset's configured pair.
func (c *Client) FetchHistorical(ctx context.Context, asset, network string, days int) (domain.CandleSeries, error) {
	op := "FetchHistorical"
	pair, err := c.pairFor(asset)
	if err != nil {
		return nil, err
	}

	klines, err := c.client.NewKlinesService().Symbol(pair).Interval("1d").Limit(days).Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	series := make(domain.CandleSeries, 0, len(klines))
	for _, k := range klines {
		candle, err := translateKline(k)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("translate kline: %w: %w", ports.ErrMalformedResponse, err), op)
		}
		series = append(series, candle)
	}
	return series, nil
}

// translateKline converts one Binance kline into the canonical candle shape.
func translateKline(k *binance.Kline) (domain.Candle, error) {
	if k == nil {
		return domain.Candle{}, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing open price %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing high price %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing low price %q: %w", k.Low, err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing close price %q: %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing volume %q: %w", k.Volume, err)
	}

	return domain.Candle{
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}
