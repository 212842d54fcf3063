package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Gemini  GeminiConfig
	Extract ExtractConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds Gemini API settings. Models and APIVersions are
// candidate lists in preference order.
type GeminiConfig struct {
	APIKey           string   `mapstructure:"api_key"`
	Models           []string `mapstructure:"models"`
	APIVersions      []string `mapstructure:"api_versions"`
	TimeoutSecs      int      `mapstructure:"timeout_secs"`
	ProbeTimeoutSecs int      `mapstructure:"probe_timeout_secs"`
	MaxOutputTokens  int      `mapstructure:"max_output_tokens"`
}

// ExtractConfig holds batch extraction limits.
type ExtractConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxBatchSize  int   `mapstructure:"max_batch_size"`
	Concurrency   int   `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the SWIPE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.models", "gemini-2.0-flash,gemini-1.5-flash,gemini-1.5-pro")
	v.SetDefault("gemini.api_versions", "v1beta,v1")
	v.SetDefault("gemini.timeout_secs", 120)
	v.SetDefault("gemini.probe_timeout_secs", 4)
	v.SetDefault("gemini.max_output_tokens", 16384)

	// Extraction defaults
	v.SetDefault("extract.max_file_size_mb", 25)
	v.SetDefault("extract.max_batch_size", 20)
	v.SetDefault("extract.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "SWIPE_SERVER_PORT",
		"server.read_timeout":       "SWIPE_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "SWIPE_SERVER_WRITE_TIMEOUT",
		"server.environment":        "SWIPE_SERVER_ENVIRONMENT",
		"log.level":                 "SWIPE_LOG_LEVEL",
		"log.format":                "SWIPE_LOG_FORMAT",
		"cors.allowed_origins":      "SWIPE_CORS_ALLOWED_ORIGINS",
		"gemini.api_key":            "SWIPE_GEMINI_API_KEY",
		"gemini.models":             "SWIPE_GEMINI_MODELS",
		"gemini.api_versions":       "SWIPE_GEMINI_API_VERSIONS",
		"gemini.timeout_secs":       "SWIPE_GEMINI_TIMEOUT_SECS",
		"gemini.probe_timeout_secs": "SWIPE_GEMINI_PROBE_TIMEOUT_SECS",
		"gemini.max_output_tokens":  "SWIPE_GEMINI_MAX_OUTPUT_TOKENS",
		"extract.max_file_size_mb":  "SWIPE_EXTRACT_MAX_FILE_SIZE_MB",
		"extract.max_batch_size":    "SWIPE_EXTRACT_MAX_BATCH_SIZE",
		"extract.concurrency":       "SWIPE_EXTRACT_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SWIPE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SWIPE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Gemini = GeminiConfig{
		APIKey:           v.GetString("gemini.api_key"),
		Models:           splitList(v.GetString("gemini.models")),
		APIVersions:      splitList(v.GetString("gemini.api_versions")),
		TimeoutSecs:      v.GetInt("gemini.timeout_secs"),
		ProbeTimeoutSecs: v.GetInt("gemini.probe_timeout_secs"),
		MaxOutputTokens:  v.GetInt("gemini.max_output_tokens"),
	}
	cfg.Extract = ExtractConfig{
		MaxFileSizeMB: v.GetInt64("extract.max_file_size_mb"),
		MaxBatchSize:  v.GetInt("extract.max_batch_size"),
		Concurrency:   v.GetInt("extract.concurrency"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string into trimmed non-empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
