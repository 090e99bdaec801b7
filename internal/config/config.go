package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config carries process-wide settings resolved from the environment.
type Config struct {
	Environment string
	HTTPAddr    string

	// DatabaseURL is a postgres DSN. When empty the service falls back to a
	// local sqlite file, which is what dev and CI run against.
	DatabaseURL string
	SQLitePath  string

	LogLevel string

	ServiceName    string
	ServiceVersion string

	TracingEnabled   bool
	OTLPEndpoint     string
	OTLPProtocol     string
	TraceSampleRatio float64
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load resolves configuration from the process environment. A .env file in
// the working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment:      getenv("LEDGERDESK_ENV", "development"),
		HTTPAddr:         getenv("LEDGERDESK_HTTP_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("LEDGERDESK_DATABASE_URL"),
		SQLitePath:       getenv("LEDGERDESK_SQLITE_PATH", "ledgerdesk.db"),
		LogLevel:         getenv("LEDGERDESK_LOG_LEVEL", "info"),
		ServiceName:      getenv("LEDGERDESK_SERVICE_NAME", "ledgerdesk"),
		ServiceVersion:   getenv("LEDGERDESK_SERVICE_VERSION", "dev"),
		TracingEnabled:   getenvBool("LEDGERDESK_TRACING_ENABLED", false),
		OTLPEndpoint:     os.Getenv("LEDGERDESK_OTLP_ENDPOINT"),
		OTLPProtocol:     getenv("LEDGERDESK_OTLP_PROTOCOL", "grpc"),
		TraceSampleRatio: getenvFloat("LEDGERDESK_TRACE_SAMPLE_RATIO", 0.1),
	}
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
