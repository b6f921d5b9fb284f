package indicators

import "errors"

// ErrInsufficientData is returned when a series is shorter than an
// indicator's required lookback. The engine maps it to a null indicator
// value; it is never a hard failure.
var ErrInsufficientData = errors.New("not enough data")

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of candles needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

// smaOf computes the arithmetic mean of the last `period` values.
func smaOf(values []float64, period int) float64 {
	total := 0.0
	for i := len(values) - period; i < len(values); i++ {
		total += values[i]
	}
	return total / float64(period)
}

// emaOf computes an exponential moving average over the whole slice, seeded
// by the SMA of the first `period` values.
func emaOf(values []float64, period int) float64 {
	multiplier := 2.0 / float64(period+1)
	ema := smaOf(values[:period], period)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
	}
	return ema
}
