package indicators

import (
	"testing"
	"time"

	"tokenpulse/internal/domain"
)

// seriesWithVolumes builds a valid daily candle series with a fixed close
// and the given volumes.
func seriesWithVolumes(volumes ...float64) domain.CandleSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.CandleSeries, 0, len(volumes))
	for i, v := range volumes {
		series = append(series, domain.Candle{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Open:      100,
			High:      100,
			Low:       100,
			Close:     100,
			Volume:    v,
		})
	}
	return series
}

func TestVolumeTrendAnalyzer_Calculate(t *testing.T) {
	tests := []struct {
		name     string
		volumes  []float64
		expected domain.VolumeTrend
	}{
		{
			name:     "Rising volume",
			volumes:  []float64{10, 10, 10, 20, 20, 20},
			expected: domain.VolumeIncreasing,
		},
		{
			name:     "Falling volume",
			volumes:  []float64{20, 20, 20, 10, 10, 10},
			expected: domain.VolumeDecreasing,
		},
		{
			name:     "Steady volume",
			volumes:  []float64{15, 15, 15, 15, 15, 15},
			expected: domain.VolumeFlat,
		},
		{
			name:     "Change within tolerance reads as flat",
			volumes:  []float64{100, 100, 100, 104, 104, 104},
			expected: domain.VolumeFlat,
		},
		{
			name:     "Change just past tolerance reads as increasing",
			volumes:  []float64{100, 100, 100, 106, 106, 106},
			expected: domain.VolumeIncreasing,
		},
		{
			name:     "Too few candles",
			volumes:  []float64{10, 20, 30, 40, 50},
			expected: domain.VolumeFlat,
		},
		{
			name:     "No volume at all",
			volumes:  []float64{0, 0, 0, 0, 0, 0},
			expected: domain.VolumeFlat,
		},
		{
			name:     "Volume appearing from nothing",
			volumes:  []float64{0, 0, 0, 10, 10, 10},
			expected: domain.VolumeIncreasing,
		},
		{
			name:     "Middle third ignored",
			volumes:  []float64{10, 10, 10, 999, 999, 999, 20, 20, 20},
			expected: domain.VolumeIncreasing,
		},
	}

	analyzer := NewVolumeTrendAnalyzer(VolumeTrendConfig{Tolerance: 0.05})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyzer.Calculate(seriesWithVolumes(tt.volumes...)); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
