package indicators

import (
	"errors"
	"fmt"

	"tokenpulse/internal/domain"
)

// EngineConfig holds the period and threshold configuration for the full
// indicator battery. Zero values are replaced by the standard defaults in
// NewEngine.
type EngineConfig struct {
	SMAPeriods      []int
	EMAPeriods      []int
	RSIPeriod       int
	RSIOverbought   float64
	RSIOversold     float64
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerStdDev float64
	VolumeTolerance float64
}

// DefaultEngineConfig returns the standard configuration: SMA 20/50/200,
// EMA 12/26, RSI(14) 70/30, MACD 12/26/9, Bollinger 20 with k=2 and a ±5%
// volume tolerance.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SMAPeriods:      []int{20, 50, 200},
		EMAPeriods:      []int{12, 26},
		RSIPeriod:       14,
		RSIOverbought:   70,
		RSIOversold:     30,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerStdDev: 2,
		VolumeTolerance: 0.05,
	}
}

// Engine computes the full indicator battery from one candle series. It is
// a pure calculation layer: no provider identity, no I/O, and deterministic
// for a given input.
type Engine struct {
	config    EngineConfig
	sma       map[int]*MovingAverage
	ema       map[int]*MovingAverage
	rsi       *RSI
	macd      *MACD
	bollinger *Bollinger
	volume    *VolumeTrendAnalyzer
}

// NewEngine creates an indicator engine from the given configuration. Zero
// values fall back to DefaultEngineConfig.
func NewEngine(config EngineConfig) *Engine {
	defaults := DefaultEngineConfig()
	if len(config.SMAPeriods) == 0 {
		config.SMAPeriods = defaults.SMAPeriods
	}
	if len(config.EMAPeriods) == 0 {
		config.EMAPeriods = defaults.EMAPeriods
	}
	if config.RSIPeriod == 0 {
		config.RSIPeriod = defaults.RSIPeriod
	}
	if config.RSIOverbought == 0 {
		config.RSIOverbought = defaults.RSIOverbought
	}
	if config.RSIOversold == 0 {
		config.RSIOversold = defaults.RSIOversold
	}
	if config.MACDFast == 0 {
		config.MACDFast = defaults.MACDFast
	}
	if config.MACDSlow == 0 {
		config.MACDSlow = defaults.MACDSlow
	}
	if config.MACDSignal == 0 {
		config.MACDSignal = defaults.MACDSignal
	}
	if config.BollingerPeriod == 0 {
		config.BollingerPeriod = defaults.BollingerPeriod
	}
	if config.BollingerStdDev == 0 {
		config.BollingerStdDev = defaults.BollingerStdDev
	}
	if config.VolumeTolerance == 0 {
		config.VolumeTolerance = defaults.VolumeTolerance
	}

	e := &Engine{
		config: config,
		sma:    make(map[int]*MovingAverage, len(config.SMAPeriods)),
		ema:    make(map[int]*MovingAverage, len(config.EMAPeriods)),
		rsi: NewRSI(RSIConfig{
			IndicatorConfig: IndicatorConfig{Period: config.RSIPeriod},
			Overbought:      config.RSIOverbought,
			Oversold:        config.RSIOversold,
		}),
		macd: NewMACD(MACDConfig{
			FastPeriod:   config.MACDFast,
			SlowPeriod:   config.MACDSlow,
			SignalPeriod: config.MACDSignal,
		}),
		bollinger: NewBollinger(BollingerConfig{
			IndicatorConfig:  IndicatorConfig{Period: config.BollingerPeriod},
			StdDevMultiplier: config.BollingerStdDev,
		}),
		volume: NewVolumeTrendAnalyzer(VolumeTrendConfig{Tolerance: config.VolumeTolerance}),
	}
	for _, p := range config.SMAPeriods {
		e.sma[p] = NewMovingAverage(MovingAverageConfig{
			IndicatorConfig: IndicatorConfig{Period: p},
			Type:            SimpleMovingAverage,
		})
	}
	for _, p := range config.EMAPeriods {
		e.ema[p] = NewMovingAverage(MovingAverageConfig{
			IndicatorConfig: IndicatorConfig{Period: p},
			Type:            ExponentialMovingAverage,
		})
	}
	return e
}

// Compute runs the full battery over the series. A malformed series is
// refused with a *domain.MalformedSeriesError; an empty series is an error.
// Indicators whose lookback exceeds the series length come back as nil
// values rather than failing the whole set.
func (e *Engine) Compute(series domain.CandleSeries) (*domain.IndicatorSet, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("empty candle series")
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	set := &domain.IndicatorSet{
		CurrentPrice: series[len(series)-1].Close,
	}

	set.MovingAverages = domain.MovingAverages{
		SMA20:  e.maValue(e.sma[20], series),
		SMA50:  e.maValue(e.sma[50], series),
		SMA200: e.maValue(e.sma[200], series),
		EMA12:  e.maValue(e.ema[12], series),
		EMA26:  e.maValue(e.ema[26], series),
	}

	set.RSI = domain.RSIResult{Zone: domain.RSINeutral}
	if v, err := e.rsi.Calculate(series); err == nil {
		set.RSI.Value = &v
		set.RSI.Zone = e.rsi.Zone(v)
	} else if !errors.Is(err, ErrInsufficientData) {
		return nil, err
	}

	set.MACD = domain.MACDResult{Signal: domain.SignalNeutral}
	if v, err := e.macd.Calculate(series); err == nil {
		set.MACD.Line = &v.Line
		set.MACD.SignalLine = &v.SignalLine
		set.MACD.Histogram = &v.Histogram
		set.MACD.Signal = v.Signal
	} else if !errors.Is(err, ErrInsufficientData) {
		return nil, err
	}

	if v, err := e.bollinger.Calculate(series); err == nil {
		set.Bollinger = domain.BollingerResult{
			Upper:     &v.Upper,
			Middle:    &v.Middle,
			Lower:     &v.Lower,
			Bandwidth: &v.Bandwidth,
		}
	} else if !errors.Is(err, ErrInsufficientData) {
		return nil, err
	}

	set.VolumeTrend = e.volume.Calculate(series)
	set.OverallSignal = e.overallSignal(set)

	return set, nil
}

// maValue runs one moving average, mapping insufficient data to nil.
func (e *Engine) maValue(ma *MovingAverage, series domain.CandleSeries) *float64 {
	if ma == nil {
		return nil
	}
	v, err := ma.Calculate(series)
	if err != nil {
		return nil
	}
	return &v
}

// overallSignal aggregates an integer vote: RSI oversold +1 / overbought -1,
// MACD bullish +1 / bearish -1, price above every available SMA (20 and 50)
// +1 / below every one -1. Missing inputs abstain rather than failing the
// composite. Positive sum is bullish, negative bearish, zero neutral; adding
// a bullish vote can never make the composite less bullish.
func (e *Engine) overallSignal(set *domain.IndicatorSet) domain.Signal {
	score := 0

	if set.RSI.Value != nil {
		switch set.RSI.Zone {
		case domain.RSIOversold:
			score++
		case domain.RSIOverbought:
			score--
		}
	}

	if set.MACD.Histogram != nil {
		switch set.MACD.Signal {
		case domain.SignalBullish:
			score++
		case domain.SignalBearish:
			score--
		}
	}

	if v := maPositionVote(set.CurrentPrice, set.MovingAverages.SMA20, set.MovingAverages.SMA50); v != 0 {
		score += v
	}

	switch {
	case score > 0:
		return domain.SignalBullish
	case score < 0:
		return domain.SignalBearish
	default:
		return domain.SignalNeutral
	}
}

// maPositionVote compares the price against whichever of the trend SMAs the
// series was long enough to produce. Above all of them votes +1, below all
// of them -1, a mixed position or no SMA at all abstains.
func maPositionVote(price float64, smas ...*float64) int {
	above, below, seen := true, true, false
	for _, sma := range smas {
		if sma == nil {
			continue
		}
		seen = true
		if price <= *sma {
			above = false
		}
		if price >= *sma {
			below = false
		}
	}
	if !seen {
		return 0
	}
	switch {
	case above:
		return 1
	case below:
		return -1
	default:
		return 0
	}
}
