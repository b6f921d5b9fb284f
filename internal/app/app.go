package app

import (
	"context"

	"tokenpulse/config"
	"tokenpulse/internal/adapters/alchemy"
	"tokenpulse/internal/adapters/binanceclient"
	"tokenpulse/internal/adapters/defillama"
	"tokenpulse/internal/adapters/geckoterminal"
	"tokenpulse/internal/domain"
	"tokenpulse/internal/httpx"
	"tokenpulse/internal/orchestrator"
	"tokenpulse/internal/portfolio"
	"tokenpulse/internal/ports"
)

// BuildOrchestrator wires the configured provider adapters into an
// orchestrator. The free DEX sources are always present; Binance joins when
// a symbol map is configured and Alchemy when an API key is set.
func BuildOrchestrator(cfg *config.Config, log ports.Logger) (*orchestrator.Orchestrator, error) {
	hc := httpx.New(cfg.ProviderTimeout)

	adapters := []orchestrator.Adapter{
		{
			Provider: geckoterminal.New(geckoterminal.Config{}, hc),
			Descriptor: ports.Descriptor{
				Name:              "geckoterminal",
				Priority:          1,
				Capabilities:      domain.CapabilitySet{domain.CapabilityPrice, domain.CapabilityHistorical, domain.CapabilityMetadata},
				Timeout:           cfg.ProviderTimeout,
				RequestsPerMinute: cfg.GeckoTerminalRPM,
			},
		},
		{
			Provider: defillama.New(defillama.Config{}, hc),
			Descriptor: ports.Descriptor{
				Name:              "defillama",
				Priority:          2,
				Capabilities:      domain.CapabilitySet{domain.CapabilityPrice, domain.CapabilityHistorical},
				Timeout:           cfg.ProviderTimeout,
				RequestsPerMinute: cfg.DeFiLlamaRPM,
			},
		},
	}

	if len(cfg.BinanceSymbolMap) > 0 {
		bc, err := binanceclient.New(binanceclient.Config{
			APIKey:    cfg.BinanceAPIKey,
			SecretKey: cfg.BinanceSecretKey,
			Logger:    log,
			SymbolMap: cfg.BinanceSymbolMap,
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, orchestrator.Adapter{
			Provider: bc,
			Descriptor: ports.Descriptor{
				Name:              "binance",
				Priority:          0,
				Capabilities:      domain.CapabilitySet{domain.CapabilityPrice, domain.CapabilityHistorical},
				Timeout:           cfg.ProviderTimeout,
				RequestsPerMinute: cfg.BinanceRPM,
			},
		})
		log.Info(context.Background(), "Binance adapter enabled", map[string]interface{}{"pairs": len(cfg.BinanceSymbolMap)})
	}

	if cfg.AlchemyAPIKey != "" {
		ac, err := alchemy.New(alchemy.Config{APIKey: cfg.AlchemyAPIKey}, hc)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, orchestrator.Adapter{
			Provider: ac,
			Descriptor: ports.Descriptor{
				Name:              "alchemy",
				Priority:          3,
				Capabilities:      domain.CapabilitySet{domain.CapabilityMetadata},
				Timeout:           cfg.ProviderTimeout,
				RequestsPerMinute: cfg.AlchemyRPM,
			},
		})
		log.Info(context.Background(), "Alchemy metadata adapter enabled")
	}

	return orchestrator.New(orchestrator.Config{
		Logger:           log,
		DegradedLatency:  cfg.DegradedLatency,
		BatchConcurrency: cfg.BatchConcurrency,
	}, adapters)
}

// BuildPortfolio assembles the portfolio service over an orchestrator from
// the configured tracked-token list.
func BuildPortfolio(cfg *config.Config, log ports.Logger, orch *orchestrator.Orchestrator) (*portfolio.Service, error) {
	quotes := make([]portfolio.Token, 0, len(cfg.QuoteTokens))
	for _, tok := range cfg.QuoteTokens {
		quotes = append(quotes, portfolio.Token{
			Symbol: tok.Symbol,
			Pair:   cfg.MainToken.Symbol + "/" + tok.Symbol,
			Ref:    domain.AssetRef{Asset: tok.Asset, Network: tok.Network},
		})
	}
	return portfolio.New(portfolio.Config{
		Name:   cfg.PortfolioName,
		Logger: log,
		MainToken: portfolio.Token{
			Symbol: cfg.MainToken.Symbol,
			Ref:    domain.AssetRef{Asset: cfg.MainToken.Asset, Network: cfg.MainToken.Network},
		},
		QuoteTokens: quotes,
	}, orch)
}
