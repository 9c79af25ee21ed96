// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the PolyShadow engine.
type Config struct {
	// Polymarket APIs
	GammaAPIURL     string
	DataAPIURL      string
	PolymarketWSURL string
	MarketLimit     int
	TradesPerMarket int
	PollInterval    time.Duration

	// Blockchain RPC
	PolygonRPCURL string
	LookupTimeout time.Duration
	LookupRetries int
	LookupBackoff time.Duration
	NonceCacheTTL time.Duration

	// Detection thresholds
	MinTradeUSD       float64
	MaxContrarianOdds float64
	GhostNonce        uint64
	YoungNonce        uint64
	FreshWalletNonce  uint64
	ScoreCutoffGhost  int
	ScoreCutoffWhale  int

	// Dedup
	SeenRetention time.Duration

	// Telegram
	TelegramBotToken string
	TelegramChatID   string
	TelegramThreadID string

	// Workers
	EnrichConcurrency int

	// UI
	EnableTUI     bool
	UIRefreshRate time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		// Polymarket
		GammaAPIURL:     getEnv("GAMMA_API_URL", "https://gamma-api.polymarket.com"),
		DataAPIURL:      getEnv("DATA_API_URL", "https://data-api.polymarket.com"),
		PolymarketWSURL: getEnv("POLYMARKET_WS_URL", "wss://ws-subscriptions-clob.polymarket.com/ws/"),
		MarketLimit:     getEnvInt("MARKET_LIMIT", 20),
		TradesPerMarket: getEnvInt("TRADES_PER_MARKET", 50),
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,

		// RPC
		PolygonRPCURL: getEnv("POLYGON_RPC_URL", ""),
		LookupTimeout: time.Duration(getEnvInt("LOOKUP_TIMEOUT_SECONDS", 10)) * time.Second,
		LookupRetries: getEnvInt("LOOKUP_RETRIES", 3),
		LookupBackoff: time.Duration(getEnvInt("LOOKUP_BACKOFF_MS", 1000)) * time.Millisecond,
		NonceCacheTTL: time.Duration(getEnvInt("NONCE_CACHE_TTL_MINUTES", 10)) * time.Minute,

		// Thresholds (defaults match the $10K / 30% / nonce<10 detection rules)
		MinTradeUSD:       getEnvFloat("MIN_TRADE_AMOUNT_USDC", 10000),
		MaxContrarianOdds: getEnvFloat("MAX_ODDS_FOR_CONTRARIAN", 0.30),
		GhostNonce:        uint64(getEnvInt("GHOST_NONCE", 1)),
		YoungNonce:        uint64(getEnvInt("YOUNG_NONCE", 5)),
		FreshWalletNonce:  uint64(getEnvInt("FRESH_WALLET_NONCE", 10)),
		ScoreCutoffGhost:  getEnvInt("SCORE_CUTOFF_GHOST", 7),
		ScoreCutoffWhale:  getEnvInt("SCORE_CUTOFF_WHALE", 5),

		// Dedup
		SeenRetention: time.Duration(getEnvInt("SEEN_RETENTION_HOURS", 24)) * time.Hour,

		// Telegram
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramThreadID: getEnv("TELEGRAM_THREAD_ID", ""),

		// Workers
		EnrichConcurrency: getEnvInt("ENRICH_CONCURRENCY", 5),

		// UI
		EnableTUI:     getEnvBool("ENABLE_TUI", false),
		UIRefreshRate: time.Duration(getEnvInt("UI_REFRESH_MS", 500)) * time.Millisecond,

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.PolygonRPCURL == "" {
		return fmt.Errorf("POLYGON_RPC_URL is required")
	}

	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}

	if c.MinTradeUSD <= 0 {
		return fmt.Errorf("MIN_TRADE_AMOUNT_USDC must be positive")
	}

	if c.MaxContrarianOdds <= 0 || c.MaxContrarianOdds >= 1 {
		return fmt.Errorf("MAX_ODDS_FOR_CONTRARIAN must be between 0 and 1")
	}

	if c.ScoreCutoffWhale >= c.ScoreCutoffGhost {
		return fmt.Errorf("SCORE_CUTOFF_WHALE must be below SCORE_CUTOFF_GHOST")
	}

	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be at least 1")
	}

	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be at least 1")
	}

	return nil
}

// MaskedBotToken returns the Telegram token with most characters hidden for logging.
func (c *Config) MaskedBotToken() string {
	return maskSecret(c.TelegramBotToken)
}

// MaskedRPCURL returns the RPC URL with most characters hidden for logging.
// RPC URLs frequently embed provider API keys.
func (c *Config) MaskedRPCURL() string {
	return maskSecret(c.PolygonRPCURL)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
