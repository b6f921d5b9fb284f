package domain

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV observation.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// CandleSeries is a time-ordered sequence of candles. Gaps are allowed but
// timestamps must be strictly increasing; position in the slice is the time
// axis for indicator calculations.
type CandleSeries []Candle

// MalformedSeriesError reports a series that violates the candle ordering or
// OHLC invariants. It is distinct from "insufficient data": a malformed
// series is refused outright rather than producing partial results.
type MalformedSeriesError struct {
	Index  int
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed candle series at index %d: %s", e.Index, e.Reason)
}

// Validate checks the series invariants: strictly increasing unique
// timestamps, High >= max(Open, Close, Low), Low <= min(Open, Close, High)
// and non-negative volume. Returns a *MalformedSeriesError describing the
// first violation found.
func (s CandleSeries) Validate() error {
	for i, c := range s {
		if i > 0 && !c.Timestamp.After(s[i-1].Timestamp) {
			if c.Timestamp.Equal(s[i-1].Timestamp) {
				return &MalformedSeriesError{Index: i, Reason: "duplicate timestamp"}
			}
			return &MalformedSeriesError{Index: i, Reason: "timestamp out of order"}
		}
		if c.High < c.Open || c.High < c.Close || c.High < c.Low {
			return &MalformedSeriesError{Index: i, Reason: "high below open/close/low"}
		}
		if c.Low > c.Open || c.Low > c.Close {
			return &MalformedSeriesError{Index: i, Reason: "low above open/close"}
		}
		if c.Volume < 0 {
			return &MalformedSeriesError{Index: i, Reason: "negative volume"}
		}
	}
	return nil
}

// Closes returns the closing prices of the series in order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Volumes returns the volumes of the series in order.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Volume
	}
	return out
}
