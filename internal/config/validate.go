package config

import (
	"errors"
	"fmt"

	"github.com/contentvault/vault-go/internal/vault"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"auto": true, "text": true, "json": true,
}

// Validate checks configuration values parsed from the file and returns
// all errors found. It accumulates every error rather than stopping at the
// first, so users see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if !validLogLevels[cfg.Logging.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be debug, info, warn or error, got %q", cfg.Logging.LogLevel))
	}

	if !validLogFormats[cfg.Logging.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: must be auto, text or json, got %q", cfg.Logging.LogFormat))
	}

	errs = append(errs, validateModels(cfg.Models)...)

	return errors.Join(errs...)
}

func validateModels(models []ModelConfig) []error {
	var errs []error

	for i, m := range models {
		if m.ContentType == "" {
			errs = append(errs, fmt.Errorf("model %d: content_type is required", i))
		}

		if m.Table == "" {
			errs = append(errs, fmt.Errorf("model %q: table is required", m.ContentType))
		}

		for _, f := range m.Fields {
			if f.ID == "" {
				errs = append(errs, fmt.Errorf("model %q: field id is required", m.ContentType))
			}

			if _, err := vault.ParseFieldKind(f.Kind); err != nil {
				errs = append(errs, fmt.Errorf("model %q field %q: %w", m.ContentType, f.ID, err))
			}
		}
	}

	return errs
}

// ValidateResolved checks constraints on the final merged configuration,
// after environment and CLI overrides have been applied.
func ValidateResolved(cfg *Config) error {
	var errs []error

	if cfg.Space == "" {
		errs = append(errs, errors.New("space: required (set it in the config file)"))
	}

	if cfg.AccessToken == "" {
		errs = append(errs, fmt.Errorf("access_token: required (set it in the config file or %s)", EnvToken))
	}

	if cfg.Locale == "" {
		errs = append(errs, errors.New("locale: must not be empty"))
	}

	if cfg.DBPath == "" {
		errs = append(errs, errors.New("db_path: must not be empty"))
	}

	return errors.Join(errs...)
}
