package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "SHIPYARD"
	defaultHTTPAddress     = "0.0.0.0:8080"
	defaultDatabasePath    = "shipyard.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultAuthIssuer      = "shipyard-auth"
	defaultAuthAudience    = "shipyard-api"
	defaultTokenTTLMinutes = 60
	defaultMetricsEnabled  = true
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress    string
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	SigningSecret  string
	AuthIssuer     string
	AuthAudience   string
	TokenTTL       time.Duration
	MetricsEnabled bool
}

// WriteProtected reports whether mutating routes require an operator token.
func (c AppConfig) WriteProtected() bool {
	return strings.TrimSpace(c.SigningSecret) != ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("auth.issuer", defaultAuthIssuer)
	configViper.SetDefault("auth.audience", defaultAuthAudience)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("metrics.enabled", defaultMetricsEnabled)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		LogFormat:      configViper.GetString("log.format"),
		SigningSecret:  configViper.GetString("auth.signing_secret"),
		AuthIssuer:     configViper.GetString("auth.issuer"),
		AuthAudience:   configViper.GetString("auth.audience"),
		TokenTTL:       time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		MetricsEnabled: configViper.GetBool("metrics.enabled"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "json", "console", "":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.LogFormat)
	}
	if c.WriteProtected() {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			return fmt.Errorf("auth.issuer is required when auth.signing_secret is set")
		}
		if strings.TrimSpace(c.AuthAudience) == "" {
			return fmt.Errorf("auth.audience is required when auth.signing_secret is set")
		}
		if c.TokenTTL <= 0 {
			return fmt.Errorf("auth.token_ttl_minutes must be positive")
		}
	}
	return nil
}
