// Package config loads the gateway configuration from a file and
// ACCESSGATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config is the gateway configuration. The library packages are configured
// through options; this struct only feeds cmd/accessgate.
type Config struct {
	TeamDomain        string `mapstructure:"team_domain"`        // Identity provider domain, e.g. "myteam.cloudflareaccess.com"
	Audience          string `mapstructure:"audience"`           // Expected application AUD tag; empty disables the audience check
	ResponseMode      string `mapstructure:"response_mode"`      // "html" or "api"
	RedirectOnMissing bool   `mapstructure:"redirect_on_missing"` // Redirect html requests without a token to the hosted login
	DevMode           bool   `mapstructure:"dev_mode"`           // Disable enforcement entirely (local development only)
	ListenAddr        string `mapstructure:"listen_addr"`        // Gateway listen address
	UpstreamURL       string `mapstructure:"upstream_url"`       // Protected upstream to proxy to
	LogLevel          string `mapstructure:"log_level"`          // logrus level name
}

// Load reads accessgate.yaml (current directory or /etc/accessgate/) and the
// environment. Environment variables use the ACCESSGATE_ prefix, e.g.
// ACCESSGATE_TEAM_DOMAIN.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("accessgate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("accessgate")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/accessgate/")

	v.SetDefault("response_mode", "html")
	v.SetDefault("redirect_on_missing", true)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")

	// Bind explicitly so env vars work without a config file.
	for _, key := range []string{
		"team_domain", "audience", "response_mode", "redirect_on_missing",
		"dev_mode", "listen_addr", "upstream_url", "log_level",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.TeamDomain == "" {
		return errors.New("team_domain is required")
	}
	if c.ResponseMode != "html" && c.ResponseMode != "api" {
		return fmt.Errorf("response_mode must be html or api, got %q", c.ResponseMode)
	}
	if c.UpstreamURL == "" {
		return errors.New("upstream_url is required")
	}
	if _, err := url.Parse(c.UpstreamURL); err != nil {
		return fmt.Errorf("upstream_url is not a valid URL: %w", err)
	}
	return nil
}
