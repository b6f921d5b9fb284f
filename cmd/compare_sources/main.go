package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"tokenpulse/config"
	"tokenpulse/internal/adapters/logger"
	"tokenpulse/internal/app"
)

// Diagnostic tool: query every price source for one asset and print the full
// comparison, discrepancies included. Defaults to the portfolio's main token.
func main() {
	asset := flag.String("asset", "", "contract address or symbol (default: configured main token)")
	network := flag.String("network", "", "network name (default: configured network)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if *asset == "" {
		*asset = cfg.MainToken.Asset
	}
	if *network == "" {
		*network = cfg.MainToken.Network
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	orch, err := app.BuildOrchestrator(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build orchestrator")
		log.Fatalf("FATAL: Failed to build orchestrator: %v", err)
	}

	cmp := orch.CompareAllSources(ctx, *asset, *network)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cmp); err != nil {
		log.Fatalf("FATAL: Failed to encode comparison: %v", err)
	}
	if !cmp.Consistent && cmp.AveragePrice != nil {
		appLogger.Warn(ctx, "Sources disagree beyond threshold", map[string]interface{}{
			"asset":   *asset,
			"network": *network,
		})
	}
}
