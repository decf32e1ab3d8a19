package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application. It is built once at
// startup and passed to the components that need it.
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBPath        string
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	JWTExpiry time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	// Menu image archive. Archiving is disabled when S3BucketName is empty.
	S3BucketName string
	AWSRegion    string

	// Rate limiting of the AI endpoints
	RateLimitRequests int
	RateLimitWindow   time.Duration

	MaxUploadBytes int64

	AI AIConfig
}

// AIConfig configures the external chat-completions endpoint.
type AIConfig struct {
	APIKey            string
	APIURL            string
	Model             string
	Timeout           time.Duration
	RetryCount        int
	ExtractMaxTokens  int
	ClassifyMaxTokens int

	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration
}

// LoadConfig creates a new Config from defaults, an optional .env file,
// environment variables and Docker secrets, then validates it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Environment: GetEnvironment(),

		ServerPort: v.GetString("server_port"),
		ServerHost: v.GetString("server_host"),

		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        resolveSecret(v, "db_user"),
		DBPassword:    resolveSecret(v, "db_password"),
		DBName:        v.GetString("db_name"),
		DBSSLMode:     v.GetString("db_ssl_mode"),
		DBPath:        v.GetString("db_path"),
		MigrationsDir: v.GetString("migrations_dir"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: resolveSecret(v, "redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      resolveSecret(v, "redis_url"),

		JWTSecret: resolveSecret(v, "jwt_secret"),
		JWTExpiry: v.GetDuration("jwt_expiry"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),

		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),

		S3BucketName: v.GetString("s3_bucket_name"),
		AWSRegion:    v.GetString("aws_region"),

		RateLimitRequests: v.GetInt("rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("rate_limit_window"),

		MaxUploadBytes: v.GetInt64("max_upload_bytes"),

		AI: AIConfig{
			APIKey:                  resolveSecret(v, "ai.api_key"),
			APIURL:                  v.GetString("ai.api_url"),
			Model:                   v.GetString("ai.model"),
			Timeout:                 v.GetDuration("ai.timeout"),
			RetryCount:              v.GetInt("ai.retry_count"),
			ExtractMaxTokens:        v.GetInt("ai.extract_max_tokens"),
			ClassifyMaxTokens:       v.GetInt("ai.classify_max_tokens"),
			BreakerFailureThreshold: v.GetUint32("ai.breaker_failure_threshold"),
			BreakerOpenTimeout:      v.GetDuration("ai.breaker_open_timeout"),
		},
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "menuwise")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "menuwise.db")
	v.SetDefault("migrations_dir", "migrations")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_expiry", 24*time.Hour)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("cors_allowed_origins", "http://localhost:3000")

	v.SetDefault("aws_region", "us-east-1")

	v.SetDefault("rate_limit_requests", 30)
	v.SetDefault("rate_limit_window", time.Hour)

	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("ai.api_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.model", "gpt-4o")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.retry_count", 1)
	v.SetDefault("ai.extract_max_tokens", 1000)
	v.SetDefault("ai.classify_max_tokens", 500)
	v.SetDefault("ai.breaker_failure_threshold", 5)
	v.SetDefault("ai.breaker_open_timeout", 30*time.Second)
}

// PostgresDSN builds the lib/pq style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// resolveSecret prefers the environment and falls back to a Docker secret
// file named after the key ("ai.api_key" reads "ai_api_key").
func resolveSecret(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return readSecret(strings.ReplaceAll(key, ".", "_"))
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
