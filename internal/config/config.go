package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIToken = "dev-token"

// Config holds application configuration
type Config struct {
	Port int
	// GRPCPort serves the ledger over gRPC; 0 disables it
	GRPCPort int
	DevMode  bool
	LogLevel string
	// LogPretty switches to human-readable console logs
	LogPretty bool
	APIToken  string

	DBDriver   string // postgres or sqlite
	DBConnStr  string
	SQLitePath string

	RapidAPIKey  string
	RapidAPIHost string
	QuoteTimeout time.Duration

	ResolverCommand string
	ResolverArgs    []string
	ResolverTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnvAsInt("PORT", 8080),
		GRPCPort:  getEnvAsInt("GRPC_PORT", 9090),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		APIToken:  getEnv("API_TOKEN", defaultAPIToken),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBConnStr:  getEnv("DB_CONN_STR", ""),
		SQLitePath: getEnv("SQLITE_PATH", "./data/portfolio.db"),

		RapidAPIKey:  getEnv("RAPIDAPI_KEY", ""),
		RapidAPIHost: getEnv("RAPIDAPI_HOST", "apidojo-yahoo-finance-v1.p.rapidapi.com"),
		QuoteTimeout: getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),

		ResolverCommand: getEnv("RESOLVER_COMMAND", "pricefetch"),
		ResolverArgs:    strings.Fields(getEnv("RESOLVER_ARGS", "")),
		ResolverTimeout: getEnvAsDuration("RESOLVER_TIMEOUT", 30*time.Second),
	}

	if cfg.DBConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		cfg.DBConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "portfolio"),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBConnStr == "" {
			return fmt.Errorf("DB_CONN_STR is required for the postgres driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("GRPC_PORT must be between 0 and 65535, got %d", c.GRPCPort)
	}
	if c.GRPCPort == c.Port {
		return fmt.Errorf("GRPC_PORT and PORT must differ, both are %d", c.Port)
	}
	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if c.QuoteTimeout <= 0 || c.ResolverTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT and RESOLVER_TIMEOUT must be positive")
	}

	// Note: quotes degrade to buy prices without RAPIDAPI_KEY, so it stays optional

	return nil
}

// DSN returns the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DBConnStr
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
