package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the fields without sane defaults are set.
// Production additionally refuses to start without database credentials.
func ValidateConfig(cfg *Config) error {
	var problems []string

	if cfg.JWTSecret == "" {
		problems = append(problems, ValidationError{Field: "JWT_SECRET", Message: "is required"}.Error())
	}
	if IsProduction() {
		if cfg.DBUser == "" {
			problems = append(problems, ValidationError{Field: "DB_USER", Message: "is required in production"}.Error())
		}
		if cfg.DBPassword == "" {
			problems = append(problems, ValidationError{Field: "DB_PASSWORD", Message: "is required in production"}.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
