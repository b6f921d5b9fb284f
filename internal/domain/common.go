package domain

// Capability describes one thing a provider adapter can do.
type Capability string

const (
	// CapabilityPrice means the adapter can return a current price.
	CapabilityPrice Capability = "price"
	// CapabilityHistorical means the adapter can return a candle series.
	CapabilityHistorical Capability = "historical"
	// CapabilityMetadata means the adapter can return display metadata
	// (name, symbol, icon) without any price.
	CapabilityMetadata Capability = "metadata"
)

// CapabilitySet is the declared capability set of a provider adapter.
type CapabilitySet []Capability

// Has reports whether the set contains the given capability.
func (s CapabilitySet) Has(c Capability) bool {
	for _, v := range s {
		if v == c {
			return true
		}
	}
	return false
}

// Signal is a directional verdict derived from one or more indicators.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// RSIZone classifies an RSI value against the overbought/oversold thresholds.
type RSIZone string

const (
	RSIOverbought RSIZone = "overbought"
	RSIOversold   RSIZone = "oversold"
	RSINeutral    RSIZone = "neutral"
)

// VolumeTrend classifies how trading volume developed over the window.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeFlat       VolumeTrend = "flat"
)

// AssetRef names one priced instrument: a contract address (or fixed symbol)
// plus the network it lives on.
type AssetRef struct {
	Asset   string `json:"asset"`
	Network string `json:"network"`
}
