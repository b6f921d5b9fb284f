package indicators

import (
	"errors"
	"math"
	"testing"
)

func TestBollinger_Calculate(t *testing.T) {
	config := BollingerConfig{
		IndicatorConfig:  IndicatorConfig{Period: 3},
		StdDevMultiplier: 2,
	}

	t.Run("Bands around the last window", func(t *testing.T) {
		b := NewBollinger(config)
		value, err := b.Calculate(seriesFromCloses(1, 2, 3, 4, 5))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		// Last window is 3,4,5: middle 4, population stddev sqrt(2/3).
		stdDev := math.Sqrt(2.0 / 3.0)
		checks := []struct {
			name     string
			got      float64
			expected float64
		}{
			{"middle", value.Middle, 4.0},
			{"upper", value.Upper, 4.0 + 2*stdDev},
			{"lower", value.Lower, 4.0 - 2*stdDev},
			{"bandwidth", value.Bandwidth, 4 * stdDev / 4.0},
		}
		for _, c := range checks {
			if math.Abs(c.got-c.expected) > 0.0001 {
				t.Errorf("Expected %s %f, got %f", c.name, c.expected, c.got)
			}
		}
	})

	t.Run("Constant closes collapse the bands", func(t *testing.T) {
		b := NewBollinger(config)
		value, err := b.Calculate(seriesFromCloses(5, 5, 5, 5, 5))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value.Upper != 5 || value.Middle != 5 || value.Lower != 5 {
			t.Errorf("Expected all bands at 5, got %+v", value)
		}
		if value.Bandwidth != 0 {
			t.Errorf("Expected zero bandwidth, got %f", value.Bandwidth)
		}
	})

	t.Run("Insufficient data", func(t *testing.T) {
		b := NewBollinger(config)
		_, err := b.Calculate(seriesFromCloses(1, 2))
		if err == nil {
			t.Fatal("Expected error but got none")
		}
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})
}

func TestBollinger_MiddleEqualsSMA(t *testing.T) {
	series := seriesFromCloses(10, 12, 11, 13, 15, 14, 16, 18, 17, 19)

	b := NewBollinger(BollingerConfig{
		IndicatorConfig:  IndicatorConfig{Period: 5},
		StdDevMultiplier: 2,
	})
	sma := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: 5},
		Type:            SimpleMovingAverage,
	})

	bands, err := b.Calculate(series)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	smaValue, err := sma.Calculate(series)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Exact equality: both are the same arithmetic mean over the same window.
	if bands.Middle != smaValue {
		t.Errorf("Expected middle band %v to equal SMA %v", bands.Middle, smaValue)
	}
}
