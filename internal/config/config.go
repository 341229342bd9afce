package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig
	State    StateConfig
	Logger   LoggerConfig
	Payment  PaymentConfig
	Callback CallbackConfig
	S3       S3Config
	Tracing  TracingConfig
}

// APIConfig holds the backend endpoint configuration.
type APIConfig struct {
	URL         string // LMS_API_URL
	BackendURL  string // LMS_BACKEND_URL
	AppHost     string
	AppProtocol string
	Timeout     time.Duration
}

// StateConfig holds the local state store configuration.
type StateConfig struct {
	DSN string // sqlite://path or postgres://...
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// PaymentConfig holds the payment verification policy and provider script.
type PaymentConfig struct {
	VerifyMaxRetries int
	VerifyBackoff    time.Duration
	VerifyTimeout    time.Duration
	ScriptURL        string
}

// CallbackConfig holds the loopback server configuration for the payment widget.
type CallbackConfig struct {
	Host string
	Port int // 0 picks a free port
}

// S3Config holds AWS S3 configuration for coupon imports and certificate archives.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "lms/")
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled      bool
	Endpoint     string
	ServiceName  string
	SampleRatio  float64
	InsecureOTLP bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment wins.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			URL:         getEnv("LMS_API_URL", ""),
			BackendURL:  getEnv("LMS_BACKEND_URL", ""),
			AppHost:     getEnv("LMS_APP_HOST", "localhost"),
			AppProtocol: getEnv("LMS_APP_PROTOCOL", "http"),
			Timeout:     getEnvAsDuration("LMS_HTTP_TIMEOUT", 30*time.Second),
		},
		State: StateConfig{
			DSN: getEnv("LMS_STATE_DSN", defaultStateDSN()),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Payment: PaymentConfig{
			VerifyMaxRetries: getEnvAsInt("LMS_VERIFY_MAX_RETRIES", 2),
			VerifyBackoff:    getEnvAsDuration("LMS_VERIFY_BACKOFF", time.Second),
			VerifyTimeout:    getEnvAsDuration("LMS_VERIFY_TIMEOUT", 30*time.Second),
			ScriptURL:        getEnv("PAYMENT_SCRIPT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		},
		Callback: CallbackConfig{
			Host: getEnv("CALLBACK_HOST", "127.0.0.1"),
			Port: getEnvAsInt("CALLBACK_PORT", 0),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "ap-south-1"),
			Prefix:  getEnv("S3_PREFIX", "lms/"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "lms-client"),
			SampleRatio:  getEnvAsFloat("OTEL_SAMPLER_RATIO", 1),
			InsecureOTLP: getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.URL == "" && c.API.BackendURL == "" && c.API.AppHost == "" {
		return fmt.Errorf("API URL or app host is required")
	}

	if c.API.AppProtocol != "http" && c.API.AppProtocol != "https" {
		return fmt.Errorf("invalid app protocol: %s (must be http or https)", c.API.AppProtocol)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive")
	}

	if c.State.DSN == "" {
		return fmt.Errorf("state DSN is required")
	}

	if !strings.HasPrefix(c.State.DSN, "sqlite://") &&
		!strings.HasPrefix(c.State.DSN, "postgres://") &&
		!strings.HasPrefix(c.State.DSN, "postgresql://") {
		return fmt.Errorf("invalid state DSN: must start with sqlite:// or postgres://")
	}

	if c.Payment.VerifyMaxRetries < 0 {
		return fmt.Errorf("verify max retries cannot be negative")
	}

	if c.Payment.VerifyTimeout <= 0 {
		return fmt.Errorf("verify timeout must be positive")
	}

	if c.Callback.Port < 0 || c.Callback.Port > 65535 {
		return fmt.Errorf("invalid callback port: %d", c.Callback.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("invalid tracing sample ratio: %v", c.Tracing.SampleRatio)
	}

	return nil
}

// Address returns the loopback callback server address.
func (c *CallbackConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// defaultStateDSN places the sqlite state file under the user config directory.
func defaultStateDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return "sqlite://" + filepath.Join(dir, "lms-client", "state.db")
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("1500ms") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
