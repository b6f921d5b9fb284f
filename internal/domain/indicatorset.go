package domain

// MovingAverages holds the moving average battery. A nil field means the
// series was too short for that period.
type MovingAverages struct {
	SMA20  *float64 `json:"sma_20"`
	SMA50  *float64 `json:"sma_50"`
	SMA200 *float64 `json:"sma_200"`
	EMA12  *float64 `json:"ema_12"`
	EMA26  *float64 `json:"ema_26"`
}

// RSIResult holds the RSI value and its zone classification.
type RSIResult struct {
	Value *float64 `json:"value"`
	Zone  RSIZone  `json:"zone"`
}

// MACDResult holds the MACD line, signal line, histogram and the directional
// signal derived from the histogram.
type MACDResult struct {
	Line       *float64 `json:"macd_line"`
	SignalLine *float64 `json:"signal_line"`
	Histogram  *float64 `json:"histogram"`
	Signal     Signal   `json:"signal"`
}

// BollingerResult holds the Bollinger band values for the current candle.
type BollingerResult struct {
	Upper     *float64 `json:"upper"`
	Middle    *float64 `json:"middle"`
	Lower     *float64 `json:"lower"`
	Bandwidth *float64 `json:"bandwidth"`
}

// IndicatorSet is the full indicator battery computed from one candle
// series. Nil values mean the required lookback exceeded the series length;
// they are never sentinel numbers. The set is created per request and holds
// no provider identity.
type IndicatorSet struct {
	CurrentPrice   float64         `json:"current_price"`
	MovingAverages MovingAverages  `json:"moving_averages"`
	RSI            RSIResult       `json:"rsi"`
	MACD           MACDResult      `json:"macd"`
	Bollinger      BollingerResult `json:"bollinger_bands"`
	VolumeTrend    VolumeTrend     `json:"volume_trend"`
	OverallSignal  Signal          `json:"overall_signal"`
}
