package indicators

import (
	"fmt"
	"math"

	"tokenpulse/internal/domain"
)

// BollingerConfig holds configuration for the Bollinger Bands indicator
type BollingerConfig struct {
	IndicatorConfig
	// StdDevMultiplier is k in middle ± k·σ, typically 2.
	StdDevMultiplier float64
}

// BollingerValue holds the band values for the last candle of a series.
type BollingerValue struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64
}

// Bollinger implements the Bollinger Bands indicator
type Bollinger struct {
	BaseIndicator
	config BollingerConfig
}

// NewBollinger creates a new Bollinger Bands indicator instance
func NewBollinger(config BollingerConfig) *Bollinger {
	return &Bollinger{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (b *Bollinger) Name() string {
	return fmt.Sprintf("Bollinger(%d)", b.Config.Period)
}

// Calculate computes the bands over the last `period` closes. The middle
// band is exactly SMA(period); the width uses the population standard
// deviation of the same window.
func (b *Bollinger) Calculate(series domain.CandleSeries) (BollingerValue, error) {
	if len(series) < b.Config.Period {
		return BollingerValue{}, fmt.Errorf("%w: %d candles for %s", ErrInsufficientData, len(series), b.Name())
	}

	closes := series.Closes()
	middle := smaOf(closes, b.Config.Period)

	window := closes[len(closes)-b.Config.Period:]
	variance := 0.0
	for _, c := range window {
		d := c - middle
		variance += d * d
	}
	variance /= float64(b.Config.Period)
	stdDev := math.Sqrt(variance)

	upper := middle + b.config.StdDevMultiplier*stdDev
	lower := middle - b.config.StdDevMultiplier*stdDev

	bandwidth := 0.0
	if middle != 0 {
		bandwidth = (upper - lower) / middle
	}

	return BollingerValue{Upper: upper, Middle: middle, Lower: lower, Bandwidth: bandwidth}, nil
}
