package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"tokenpulse/config"
	"tokenpulse/internal/adapters/logger"
	"tokenpulse/internal/app"
	"tokenpulse/internal/orchestrator"
)

// Operational probe: ping every configured source once and print its status.
// Exits non-zero when any source is down, so it slots into cron or CI checks.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	orch, err := app.BuildOrchestrator(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to build orchestrator")
		log.Fatalf("FATAL: Failed to build orchestrator: %v", err)
	}

	statuses := orch.HealthCheck(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statuses); err != nil {
		log.Fatalf("FATAL: Failed to encode statuses: %v", err)
	}

	for name, h := range statuses {
		if h.Status == orchestrator.HealthDown {
			appLogger.Error(ctx, nil, "Source down", map[string]interface{}{"source": name, "reason": h.Err})
			os.Exit(1)
		}
	}
}
