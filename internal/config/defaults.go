package config

import "github.com/contentvault/vault-go/internal/cda"

// Default values for configuration options. These are the base layer of
// the override chain and work without any config file present.
const (
	defaultEnvironment = "master"
	defaultLocale      = "en-US"
	defaultDBPath      = "vault.db"
	defaultLogLevel    = "info"
	defaultLogFormat   = "auto"

	defaultConfigPath = "vault.toml"
)

// DefaultConfig returns a Config populated with all default values.
// This is used as the starting point for TOML decoding, so unset fields
// retain defaults, and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Environment: defaultEnvironment,
		BaseURL:     cda.DefaultBaseURL,
		Locale:      defaultLocale,
		DBPath:      defaultDBPath,
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
	}
}

// DefaultConfigPath returns the config file path used when neither the
// environment nor the CLI overrides it.
func DefaultConfigPath() string {
	return defaultConfigPath
}
