package indicators

import (
	"fmt"

	"tokenpulse/internal/domain"
)

// MACDConfig holds configuration for the MACD indicator
type MACDConfig struct {
	FastPeriod   int // typically 12
	SlowPeriod   int // typically 26
	SignalPeriod int // typically 9
}

// MACDValue is the full MACD readout for the last candle of a series.
type MACDValue struct {
	Line       float64
	SignalLine float64
	Histogram  float64
	Signal     domain.Signal
}

// MACD implements the Moving Average Convergence Divergence indicator
type MACD struct {
	config MACDConfig
}

// NewMACD creates a new MACD indicator instance
func NewMACD(config MACDConfig) *MACD {
	return &MACD{config: config}
}

// Name returns the name of the indicator
func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.config.FastPeriod, m.config.SlowPeriod, m.config.SignalPeriod)
}

// RequiredDataPoints returns the minimum number of candles needed for calculation
func (m *MACD) RequiredDataPoints() int {
	return m.config.SlowPeriod
}

// Calculate computes the MACD line, signal line and histogram for the last
// candle. The directional signal is strongest on a histogram sign flip
// versus the prior candle (a crossover); otherwise the histogram's sign is
// carried as a weaker read.
func (m *MACD) Calculate(series domain.CandleSeries) (MACDValue, error) {
	closes := series.Closes()
	if len(closes) < m.config.SlowPeriod {
		return MACDValue{}, fmt.Errorf("%w: %d candles for %s", ErrInsufficientData, len(closes), m.Name())
	}

	// One MACD value per close from slowPeriod-1 onward.
	macdVals := make([]float64, 0, len(closes)-m.config.SlowPeriod+1)
	for i := m.config.SlowPeriod; i <= len(closes); i++ {
		window := closes[:i]
		macdVals = append(macdVals, emaOf(window, m.config.FastPeriod)-emaOf(window, m.config.SlowPeriod))
	}

	line := macdVals[len(macdVals)-1]
	histogram, signalLine := m.histogramAt(macdVals, line)

	val := MACDValue{Line: line, SignalLine: signalLine, Histogram: histogram}
	val.Signal = m.direction(macdVals, histogram)
	return val, nil
}

// histogramAt returns the histogram and signal line for the last entry of
// the MACD value slice. With fewer MACD values than the signal period the
// effective period shrinks to the available history, so a short but valid
// series still produces a real signal line instead of a zero histogram.
func (m *MACD) histogramAt(macdVals []float64, line float64) (histogram, signalLine float64) {
	period := m.config.SignalPeriod
	if len(macdVals) < period {
		period = len(macdVals)
	}
	signalLine = emaOf(macdVals, period)
	return line - signalLine, signalLine
}

// direction derives the directional signal, checking for a crossover
// against the prior candle's histogram first.
func (m *MACD) direction(macdVals []float64, histogram float64) domain.Signal {
	if len(macdVals) > 1 {
		prior := macdVals[:len(macdVals)-1]
		priorHist, _ := m.histogramAt(prior, prior[len(prior)-1])
		if histogram > 0 && priorHist <= 0 {
			return domain.SignalBullish
		}
		if histogram < 0 && priorHist >= 0 {
			return domain.SignalBearish
		}
	}
	switch {
	case histogram > 0:
		return domain.SignalBullish
	case histogram < 0:
		return domain.SignalBearish
	default:
		return domain.SignalNeutral
	}
}
