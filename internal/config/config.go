// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the admin API
	HTTPPort int

	// Bearer token protecting the admin API. Empty disables auth.
	AdminToken string

	// Admin API rate limit (requests/second, 0 = unlimited) and burst
	RateLimit      float64
	RateLimitBurst int

	// Upstream price feed
	PriceAPIURL   string
	PriceAPIToken string

	// Parallel workers for the price import batch
	PriceWorkers int

	// Per-endpoint retry policy for the price batch
	PriceMaxRetries int
	PriceRetryDelay time.Duration

	// How long price history is kept
	HistoryRetention time.Duration

	// Directory holding set/card JSON data files
	DataDir string

	// Script launch contract (compatibility mode)
	Interpreter string
	ScriptsDir  string

	// OTLP collector address for tracing
	OTELEndpoint string
}

// Load reads configuration from the environment. If envFile is non-empty
// (or a .env file exists in the working directory) its variables are loaded
// first without overriding already-set ones.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Best effort; containers usually inject env directly.
		godotenv.Load()
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := 6161 // Default
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	rateLimit := 0.0
	if s := os.Getenv("RATE_LIMIT"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		rateLimit = r
	}

	rateBurst := 10
	if s := os.Getenv("RATE_LIMIT_BURST"); s != "" {
		b, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		rateBurst = b
	}

	priceURL := os.Getenv("PRICE_API_URL")
	if priceURL == "" {
		priceURL = "https://api.pokemontcg.io/v2/cards?select=id,name,tcgplayer"
	}

	workers := 3 // Default
	if s := os.Getenv("PRICE_WORKERS"); s != "" {
		w, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PRICE_WORKERS: %w", err)
		}
		workers = w
	}

	maxRetries := 3
	if s := os.Getenv("PRICE_MAX_RETRIES"); s != "" {
		r, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PRICE_MAX_RETRIES: %w", err)
		}
		maxRetries = r
	}

	retryDelay := 10 * time.Second
	if s := os.Getenv("PRICE_RETRY_DELAY"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PRICE_RETRY_DELAY: %w", err)
		}
		retryDelay = d
	}

	// Price history is kept for one year by default.
	retention := 365 * 24 * time.Hour
	if s := os.Getenv("HISTORY_RETENTION"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_RETENTION: %w", err)
		}
		retention = d
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	interpreter := os.Getenv("INTERPRETER")
	if interpreter == "" {
		interpreter = "python3"
	}

	scriptsDir := os.Getenv("SCRIPTS_DIR")
	if scriptsDir == "" {
		scriptsDir = "/scripts"
	}

	return &Config{
		DatabaseURL:      dbURL,
		HTTPPort:         port,
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		RateLimit:        rateLimit,
		RateLimitBurst:   rateBurst,
		PriceAPIURL:      priceURL,
		PriceAPIToken:    os.Getenv("API_TOKEN"),
		PriceWorkers:     workers,
		PriceMaxRetries:  maxRetries,
		PriceRetryDelay:  retryDelay,
		HistoryRetention: retention,
		DataDir:          dataDir,
		Interpreter:      interpreter,
		ScriptsDir:       scriptsDir,
		OTELEndpoint:     os.Getenv("OTEL_ENDPOINT"),
	}, nil
}
