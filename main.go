package main

import (
	"context"
	"encoding/json"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"

	"tokenpulse/config"
	"tokenpulse/internal/adapters/logger"
	"tokenpulse/internal/app"
	"tokenpulse/internal/indicators"
)

// report is the one-shot output: the tracked portfolio plus a technical
// read of the main token.
type report struct {
	Portfolio  interface{} `json:"portfolio"`
	Indicators interface{} `json:"main_token_indicators,omitempty"`
}

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Wire adapters and orchestrator
	orch, err := app.BuildOrchestrator(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build orchestrator")
		log.Fatalf("FATAL: Failed to build orchestrator: %v", err)
	}
	appLogger.Info(ctx, "Orchestrator initialized", map[string]interface{}{"adapters": len(orch.Descriptors())})

	// 4. Portfolio service
	pf, err := app.BuildPortfolio(cfg, appLogger, orch)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build portfolio service")
		log.Fatalf("FATAL: Failed to build portfolio service: %v", err)
	}

	// 5. Fetch the portfolio summary
	out := report{Portfolio: pf.Summary(ctx)}

	// 6. Technical read of the main token: candles plus the indicator battery.
	// The portfolio stays useful even when no source serves candles.
	series, err := orch.GetHistorical(ctx, cfg.MainToken.Asset, cfg.MainToken.Network, cfg.HistoricalDays)
	if err != nil {
		appLogger.Warn(ctx, "No historical data for main token", map[string]interface{}{
			"symbol": cfg.MainToken.Symbol,
			"reason": err.Error(),
		})
	} else {
		engine := indicators.NewEngine(indicators.EngineConfig{})
		set, err := engine.Compute(series)
		if err != nil {
			appLogger.Warn(ctx, "Indicator computation failed", map[string]interface{}{
				"symbol": cfg.MainToken.Symbol,
				"reason": err.Error(),
			})
		} else {
			out.Indicators = set
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to encode report")
		log.Fatalf("FATAL: Failed to encode report: %v", err)
	}
}
