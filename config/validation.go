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

// requiredFields maps the configuration fields every environment must carry
// to their values. MediaBucket is optional: without it the server runs with
// image uploads disabled.
func requiredFields(cfg *Config) map[string]string {
	return map[string]string{
		"ServerPort": cfg.ServerPort,
		"DBHost":     cfg.DBHost,
		"DBPort":     cfg.DBPort,
		"DBUser":     cfg.DBUser,
		"DBName":     cfg.DBName,
		"JWTSecret":  cfg.JWTSecret,
	}
}

// ValidateConfig checks that all required configuration is present.
func ValidateConfig(cfg *Config) error {
	var missing []string
	for field, value := range requiredFields(cfg) {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return ValidationError{
			Field:   strings.Join(missing, ", "),
			Message: "required configuration is missing",
		}
	}
	return nil
}
