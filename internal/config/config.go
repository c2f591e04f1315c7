package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; DATABASE_URL is required only for the
// postgres store.
type Config struct {
	// Application
	AppName   string
	Debug     bool
	LogLevel  string
	LogFormat string

	// Server
	Host               string
	HTTPPort           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// LLM
	LLMModel       string
	LLMAPIKey      string
	LLMAPIBase     string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration
	LLMRateLimit   int

	// ComBase
	ComBaseModelsPath string
	ComBaseAPIURL     string
	ComBaseTimeout    time.Duration

	// Conservative defaults used when a prediction omits a value
	DefaultTemperatureAbuseC float64
	DefaultPH                float64
	DefaultWaterActivity     float64

	// Storage
	StoreDriver    string
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string
	SQLitePath     string

	HealthCheckInterval time.Duration
}

// Load reads the optional .env file named by ENV_FILE (default .env) and then
// the environment. Real environment variables win over the file.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		AppName:   getEnv("APP_NAME", "Problem Interpretation Module"),
		Debug:     getBool("DEBUG", false),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Host:               getEnv("HOST", "0.0.0.0"),
		HTTPPort:           getEnv("HTTP_PORT", "8000"),
		ReadTimeout:        getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:       getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LLMModel:       getEnv("LLM_MODEL", "gpt-4-turbo-preview"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMAPIBase:     getEnv("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMTemperature: getFloat("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:   getInt("LLM_MAX_TOKENS", 4096),
		LLMTimeout:     getDuration("LLM_TIMEOUT", 60*time.Second),
		LLMRateLimit:   getInt("LLM_RATE_LIMIT", 5),

		ComBaseModelsPath: getEnv("COMBASE_MODELS_PATH", "data/combase_models.csv"),
		ComBaseAPIURL:     os.Getenv("COMBASE_API_URL"),
		ComBaseTimeout:    getDuration("COMBASE_TIMEOUT", 30*time.Second),

		DefaultTemperatureAbuseC: getFloat("DEFAULT_TEMPERATURE_ABUSE_C", 25.0),
		DefaultPH:                getFloat("DEFAULT_PH", 7.0),
		DefaultWaterActivity:     getFloat("DEFAULT_WATER_ACTIVITY", 0.99),

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 2)),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/predictions.db"),

		HealthCheckInterval: getDuration("HEALTH_CHECK_INTERVAL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error describing the first invalid value.
func (c *Config) Validate() error {
	switch {
	case c.LLMTemperature < 0 || c.LLMTemperature > 2:
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLMTemperature)
	case c.LLMMaxTokens < 100 || c.LLMMaxTokens > 32000:
		return fmt.Errorf("LLM_MAX_TOKENS must be between 100 and 32000, got %d", c.LLMMaxTokens)
	case c.ComBaseTimeout < 5*time.Second || c.ComBaseTimeout > 120*time.Second:
		return fmt.Errorf("COMBASE_TIMEOUT must be between 5s and 120s, got %s", c.ComBaseTimeout)
	case c.DefaultPH < 0 || c.DefaultPH > 14:
		return fmt.Errorf("DEFAULT_PH must be between 0 and 14, got %g", c.DefaultPH)
	case c.DefaultWaterActivity < 0 || c.DefaultWaterActivity > 1:
		return fmt.Errorf("DEFAULT_WATER_ACTIVITY must be between 0 and 1, got %g", c.DefaultWaterActivity)
	case c.LLMTimeout <= 0:
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	case c.HealthCheckInterval <= 0:
		return fmt.Errorf("HEALTH_CHECK_INTERVAL must be positive, got %s", c.HealthCheckInterval)
	}

	switch c.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, postgres, sqlite, got %q", c.StoreDriver)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.HTTPPort
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
