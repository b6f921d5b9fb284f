package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tokenpulse/internal/adapters/logger" // Import the logger package for LogLevel
)

// TrackedToken is one portfolio entry parsed from the environment.
type TrackedToken struct {
	Symbol  string
	Asset   string
	Network string
}

// Config holds all application configuration.
type Config struct {
	// Provider credentials. Binance public market data works without keys;
	// Alchemy always needs one (the adapter is skipped when it is empty).
	AlchemyAPIKey    string
	BinanceAPIKey    string
	BinanceSecretKey string

	// BinanceSymbolMap maps asset references to Binance trading pairs,
	// parsed from ASSET=PAIR entries.
	BinanceSymbolMap map[string]string

	// Orchestration parameters
	ProviderTimeout  time.Duration
	DegradedLatency  time.Duration
	BatchConcurrency int
	HistoricalDays   int

	// Per-provider rate budgets (requests per minute, 0 = unlimited)
	GeckoTerminalRPM int
	DeFiLlamaRPM     int
	BinanceRPM       int
	AlchemyRPM       int

	// Portfolio
	PortfolioName string
	Network       string
	MainToken     TrackedToken
	QuoteTokens   []TrackedToken

	// Logging
	LogLevel logger.LogLevel
}

// The original dashboard's tracked portfolio: DDD and the tokens it is
// paired with, all on Polygon.
const (
	defaultPortfolioName = "DDD Portfolio"
	defaultNetwork       = "polygon"
	defaultMainToken     = "DDD:0x4bf82cf0d6b2afc87367052b793097153c859d38"
	defaultQuoteTokens   = "USDGLO:0x7ee2dd0022e3460177b90b8f8fa3b3a76d970ff6," +
		"axiREGEN:0x520a3b3faca7ddc8dc8cd3380c8475b67f3c7b8d," +
		"CCC:0x73e6a1630486d0874ec56339327993a3e4684691," +
		"PR24:0xa249cc5719da5457b212d9c5f4b1e95c7f597441," +
		"NCT:0xfc983c854683b562c6e0f858a15b32698b32ba45," +
		"JCGWR:0x7aadf47b49202b904b0f62e533442b09fcaa2614," +
		"AU24T:0xdaa015423b5965f1b198119cd8940e0e551cd74c," +
		"JLT-F24:0x4faf57a632bd809974358a5fff9ae4aec5a51b7d," +
		"JLT-F24-2:0xf2bda2e42fbd1ec6ee61b9e11aeb690eb88956c1"
)

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Credentials. All optional: the free sources carry the service alone.
	cfg.AlchemyAPIKey = getEnv("ALCHEMY_API_KEY", "")
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")

	cfg.BinanceSymbolMap, err = parseSymbolMap(getEnv("BINANCE_SYMBOL_MAP", ""))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BINANCE_SYMBOL_MAP: %v", err))
	}

	// Orchestration parameters
	providerTimeoutSeconds := getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 10)
	if providerTimeoutSeconds <= 0 {
		errs = append(errs, "PROVIDER_TIMEOUT_SECONDS must be positive")
	}
	cfg.ProviderTimeout = time.Duration(providerTimeoutSeconds) * time.Second

	degradedLatencyMs := getEnvAsInt("DEGRADED_LATENCY_MS", 2000)
	if degradedLatencyMs <= 0 {
		errs = append(errs, "DEGRADED_LATENCY_MS must be positive")
	}
	cfg.DegradedLatency = time.Duration(degradedLatencyMs) * time.Millisecond

	cfg.BatchConcurrency, err = getEnvAsIntRequired("BATCH_CONCURRENCY", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BATCH_CONCURRENCY: %v", err))
	} else if cfg.BatchConcurrency <= 0 {
		errs = append(errs, "BATCH_CONCURRENCY must be positive")
	}

	cfg.HistoricalDays, err = getEnvAsIntRequired("HISTORICAL_DAYS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HISTORICAL_DAYS: %v", err))
	} else if cfg.HistoricalDays <= 0 {
		errs = append(errs, "HISTORICAL_DAYS must be positive")
	}

	// Rate budgets (documented free-tier limits)
	cfg.GeckoTerminalRPM = getEnvAsInt("GECKOTERMINAL_RPM", 30)
	cfg.DeFiLlamaRPM = getEnvAsInt("DEFILLAMA_RPM", 120)
	cfg.BinanceRPM = getEnvAsInt("BINANCE_RPM", 0)
	cfg.AlchemyRPM = getEnvAsInt("ALCHEMY_RPM", 300)
	if cfg.GeckoTerminalRPM < 0 || cfg.DeFiLlamaRPM < 0 || cfg.BinanceRPM < 0 || cfg.AlchemyRPM < 0 {
		errs = append(errs, "rate budgets (RPM) cannot be negative")
	}

	// Portfolio
	cfg.PortfolioName = getEnv("PORTFOLIO_NAME", defaultPortfolioName)
	cfg.Network = getEnv("NETWORK", defaultNetwork)
	if cfg.Network == "" {
		errs = append(errs, "NETWORK must be set")
	}

	cfg.MainToken, err = parseToken(getEnv("MAIN_TOKEN", defaultMainToken), cfg.Network)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAIN_TOKEN: %v", err))
	}

	cfg.QuoteTokens, err = parseTokenList(getEnv("QUOTE_TOKENS", defaultQuoteTokens), cfg.Network)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid QUOTE_TOKENS: %v", err))
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// parseToken parses one SYMBOL:CONTRACT entry. The network defaults to the
// portfolio network but can be pinned per token as SYMBOL:CONTRACT@network.
func parseToken(entry, network string) (TrackedToken, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return TrackedToken{}, fmt.Errorf("empty token entry")
	}
	if at := strings.LastIndex(entry, "@"); at >= 0 {
		network = entry[at+1:]
		entry = entry[:at]
	}
	sep := strings.Index(entry, ":")
	if sep <= 0 || sep == len(entry)-1 {
		return TrackedToken{}, fmt.Errorf("token entry %q is not SYMBOL:CONTRACT", entry)
	}
	return TrackedToken{
		Symbol:  entry[:sep],
		Asset:   strings.ToLower(entry[sep+1:]),
		Network: network,
	}, nil
}

func parseTokenList(list, network string) ([]TrackedToken, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	tokens := make([]TrackedToken, 0, len(parts))
	for _, part := range parts {
		tok, err := parseToken(part, network)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// parseSymbolMap parses comma-separated ASSET=PAIR entries.
func parseSymbolMap(list string) (map[string]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sep := strings.Index(part, "=")
		if sep <= 0 || sep == len(part)-1 {
			return nil, fmt.Errorf("symbol map entry %q is not ASSET=PAIR", part)
		}
		out[strings.ToLower(part[:sep])] = strings.ToUpper(part[sep+1:])
	}
	return out, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
