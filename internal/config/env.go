package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig = "VAULT_GO_CONFIG"
	EnvToken  = "VAULT_GO_TOKEN"
	EnvLocale = "VAULT_GO_LOCALE"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath  string // VAULT_GO_CONFIG: override config file path
	AccessToken string // VAULT_GO_TOKEN: delivery API access token
	Locale      string // VAULT_GO_LOCALE: sync locale override
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; callers apply the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:  os.Getenv(EnvConfig),
		AccessToken: os.Getenv(EnvToken),
		Locale:      os.Getenv(EnvLocale),
	}
}
