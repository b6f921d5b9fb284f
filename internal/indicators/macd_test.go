package indicators

import (
	"errors"
	"testing"

	"tokenpulse/internal/domain"
)

func TestMACD_Calculate(t *testing.T) {
	config := MACDConfig{FastPeriod: 3, SlowPeriod: 5, SignalPeriod: 3}

	t.Run("Insufficient data", func(t *testing.T) {
		macd := NewMACD(config)
		_, err := macd.Calculate(seriesFromCloses(1, 2, 3, 4))
		if err == nil {
			t.Fatal("Expected error but got none")
		}
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("Rising closes give a positive line and histogram", func(t *testing.T) {
		macd := NewMACD(config)
		value, err := macd.Calculate(seriesFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value.Line <= 0 {
			t.Errorf("Expected positive MACD line, got %f", value.Line)
		}
		if value.Histogram <= 0 {
			t.Errorf("Expected positive histogram, got %f", value.Histogram)
		}
		if value.Signal != domain.SignalBullish {
			t.Errorf("Expected bullish signal, got %s", value.Signal)
		}
	})

	t.Run("Falling closes give a negative line and histogram", func(t *testing.T) {
		macd := NewMACD(config)
		value, err := macd.Calculate(seriesFromCloses(12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value.Line >= 0 {
			t.Errorf("Expected negative MACD line, got %f", value.Line)
		}
		if value.Histogram >= 0 {
			t.Errorf("Expected negative histogram, got %f", value.Histogram)
		}
		if value.Signal != domain.SignalBearish {
			t.Errorf("Expected bearish signal, got %s", value.Signal)
		}
	})

	t.Run("Constant closes are neutral", func(t *testing.T) {
		macd := NewMACD(config)
		value, err := macd.Calculate(seriesFromCloses(5, 5, 5, 5, 5, 5, 5, 5, 5, 5))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value.Line != 0 || value.Histogram != 0 {
			t.Errorf("Expected zero line and histogram, got line=%f histogram=%f", value.Line, value.Histogram)
		}
		if value.Signal != domain.SignalNeutral {
			t.Errorf("Expected neutral signal, got %s", value.Signal)
		}
	})

	t.Run("Signal line collapses onto the line with a short history", func(t *testing.T) {
		// Exactly slowPeriod candles: only one MACD value exists, so the
		// signal line equals the line and the histogram is zero.
		macd := NewMACD(config)
		value, err := macd.Calculate(seriesFromCloses(1, 2, 3, 4, 5))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value.SignalLine != value.Line {
			t.Errorf("Expected signal line %f to equal line %f", value.SignalLine, value.Line)
		}
		if value.Histogram != 0 {
			t.Errorf("Expected zero histogram, got %f", value.Histogram)
		}
	})
}

func TestMACD_Deterministic(t *testing.T) {
	macd := NewMACD(MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9})
	closes := make([]float64, 0, 60)
	for i := 0; i < 60; i++ {
		closes = append(closes, 100+float64(i%7)-float64(i%3))
	}
	series := seriesFromCloses(closes...)

	first, err := macd.Calculate(series)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := macd.Calculate(series)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical results for the same input, got %+v and %+v", first, second)
	}
}
