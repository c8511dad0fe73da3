package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Ledger query service configuration
	Ledger struct {
		// RPCURL is the full JSON-RPC endpoint. When empty it is
		// derived from the Infura mainnet template and the API key.
		RPCURL         string
		APIKey         string
		RequestTimeout time.Duration
		LookupTimeout  time.Duration
		Breaker        struct {
			FailureThreshold uint
			SuccessThreshold uint
			RetryTimeout     time.Duration
		}
	}

	// Enrichment cache settings
	Cache struct {
		Enabled     bool
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}

	// Redis configuration; when Addr is set the enrichment cache is
	// shared through redis instead of process memory.
	Redis struct {
		Addr string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables.
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "5000")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Ledger config
		instance.Ledger.RPCURL = getEnvString("LEDGER_RPC_URL", "")
		instance.Ledger.APIKey = getEnvString("LEDGER_API_KEY", "")
		instance.Ledger.RequestTimeout = getEnvDuration("LEDGER_REQUEST_TIMEOUT", 30*time.Second)
		instance.Ledger.LookupTimeout = getEnvDuration("LEDGER_LOOKUP_TIMEOUT", 15*time.Second)
		instance.Ledger.Breaker.FailureThreshold = uint(getEnvInt("LEDGER_BREAKER_FAILURES", 5))
		instance.Ledger.Breaker.SuccessThreshold = uint(getEnvInt("LEDGER_BREAKER_SUCCESSES", 2))
		instance.Ledger.Breaker.RetryTimeout = getEnvDuration("LEDGER_BREAKER_RETRY", 60*time.Second)

		// Cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 10*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)

		// Redis config
		instance.Redis.Addr = getEnvString("REDIS_URL", "")

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// LedgerEndpoint returns the JSON-RPC endpoint URL, composing the
// Infura mainnet URL from the API key when no explicit URL is set.
func (c *Config) LedgerEndpoint() string {
	if c.Ledger.RPCURL != "" {
		return c.Ledger.RPCURL
	}
	return fmt.Sprintf("https://mainnet.infura.io/v3/%s", c.Ledger.APIKey)
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
