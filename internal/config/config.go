// Package config implements TOML configuration loading and validation for
// vault-go. It supports a three-layer override chain (defaults -> config
// file -> environment -> CLI flags) and converts declared content models
// into a vault schema registry.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Space       string `toml:"space"`
	Environment string `toml:"environment"`
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
	Locale      string `toml:"locale"`
	DBPath      string `toml:"db_path"`

	Logging LoggingConfig `toml:"logging"`
	Models  []ModelConfig `toml:"model"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// ModelConfig declares one content type to materialize into a local table.
type ModelConfig struct {
	ContentType string        `toml:"content_type"`
	Table       string        `toml:"table"`
	Fields      []FieldConfig `toml:"field"`
}

// FieldConfig declares one materialized field of a model. Kind must parse
// as a vault field kind (text, bool, blob, array, link, link_array).
type FieldConfig struct {
	ID     string `toml:"id"`
	Column string `toml:"column"`
	Kind   string `toml:"kind"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	Locale     *string // --locale flag
	DBPath     *string // --db flag
}
