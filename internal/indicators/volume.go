package indicators

import "tokenpulse/internal/domain"

// VolumeTrendConfig holds configuration for the volume trend analyzer.
type VolumeTrendConfig struct {
	// Tolerance is the relative band around "no change" that still reads
	// as flat, e.g. 0.05 for ±5%. Keeps noise from flipping the trend.
	Tolerance float64
}

// VolumeTrendAnalyzer compares mean volume of the most recent third of the
// window against the earliest third.
type VolumeTrendAnalyzer struct {
	config VolumeTrendConfig
}

// NewVolumeTrendAnalyzer creates a new volume trend analyzer instance
func NewVolumeTrendAnalyzer(config VolumeTrendConfig) *VolumeTrendAnalyzer {
	return &VolumeTrendAnalyzer{config: config}
}

// Name returns the name of the indicator
func (v *VolumeTrendAnalyzer) Name() string {
	return "VolumeTrend"
}

// Calculate classifies the volume development over the window. Series too
// short to split into thirds, or with no volume at all, read as flat.
func (v *VolumeTrendAnalyzer) Calculate(series domain.CandleSeries) domain.VolumeTrend {
	volumes := series.Volumes()
	if len(volumes) < 6 {
		return domain.VolumeFlat
	}
	third := len(volumes) / 3

	total := 0.0
	for _, vol := range volumes {
		total += vol
	}
	if total == 0 {
		return domain.VolumeFlat
	}

	earliest := mean(volumes[:third])
	recent := mean(volumes[len(volumes)-third:])
	if earliest == 0 {
		if recent > 0 {
			return domain.VolumeIncreasing
		}
		return domain.VolumeFlat
	}

	ratio := recent / earliest
	switch {
	case ratio > 1+v.config.Tolerance:
		return domain.VolumeIncreasing
	case ratio < 1-v.config.Tolerance:
		return domain.VolumeDecreasing
	default:
		return domain.VolumeFlat
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
