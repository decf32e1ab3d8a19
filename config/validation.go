package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig checks the configuration against the requirements of its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	require("SERVER_PORT", cfg.ServerPort)
	require("JWT_SECRET", cfg.JWTSecret)

	switch cfg.DBDriver {
	case "postgres":
		require("DB_HOST", cfg.DBHost)
		require("DB_PORT", cfg.DBPort)
		require("DB_USER", cfg.DBUser)
		require("DB_PASSWORD", cfg.DBPassword)
		require("DB_NAME", cfg.DBName)
	case "sqlite":
		require("DB_PATH", cfg.DBPath)
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.Environment.RequiresAIKey() {
		require("AI_API_KEY", cfg.AI.APIKey)
	}
	require("AI_API_URL", cfg.AI.APIURL)
	require("AI_MODEL", cfg.AI.Model)
	if cfg.AI.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "AI_TIMEOUT", Message: "must be positive"})
	}
	if cfg.AI.RetryCount < 0 {
		errs = append(errs, ValidationError{Field: "AI_RETRY_COUNT", Message: "must not be negative"})
	}

	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive when rate limiting is enabled"})
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, ValidationError{Field: "MAX_UPLOAD_BYTES", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
