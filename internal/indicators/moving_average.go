package indicators

import (
	"fmt"

	"tokenpulse/internal/domain"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s(%d)", m.config.Type, m.Config.Period)
}

// Calculate computes the moving average over the series closes based on the
// configured type.
func (m *MovingAverage) Calculate(series domain.CandleSeries) (float64, error) {
	if len(series) < m.Config.Period {
		return 0, fmt.Errorf("%w: %d candles for %s", ErrInsufficientData, len(series), m.Name())
	}
	switch m.config.Type {
	case SimpleMovingAverage:
		return smaOf(series.Closes(), m.Config.Period), nil
	case ExponentialMovingAverage:
		return emaOf(series.Closes(), m.Config.Period), nil
	default:
		return 0, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}
}
