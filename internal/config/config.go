package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string `mapstructure:"PORT"`
	Env           string `mapstructure:"ENV"`
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	APITimeoutMS  int    `mapstructure:"API_TIMEOUT_MS"`
	CacheTTLMS    int    `mapstructure:"CACHE_TTL_MS"`
	UploadsBase   string `mapstructure:"UPLOADS_BASE_URL"`
	ClinicName    string `mapstructure:"CLINIC_NAME"`
	ClinicAddress string `mapstructure:"CLINIC_ADDRESS"`
	ClinicPhone   string `mapstructure:"CLINIC_PHONE"`
	ClinicEmail   string `mapstructure:"CLINIC_EMAIL"`
	ClinicRegNo   string `mapstructure:"CLINIC_REG_NO"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("API_TIMEOUT_MS", 15000)
	v.SetDefault("CACHE_TTL_MS", 30000)
	v.SetDefault("UPLOADS_BASE_URL", "/uploads")
	v.SetDefault("CLINIC_NAME", "AGASTYA CLINIC")
	v.SetDefault("CLINIC_ADDRESS", "Ch.Shivaji Nagar, yadavvadi Road, Shiroli Pulachi, Tal-Hatkanagle, Dist -kolhapur.")
	v.SetDefault("CLINIC_PHONE", "9511994525")
	v.SetDefault("CLINIC_EMAIL", "agastyahospital15@gmail.com")
	v.SetDefault("CLINIC_REG_NO", "I-93581-A")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("API_BASE_URL")
	v.BindEnv("API_TIMEOUT_MS")
	v.BindEnv("CACHE_TTL_MS")
	v.BindEnv("UPLOADS_BASE_URL")
	v.BindEnv("CLINIC_NAME")
	v.BindEnv("CLINIC_ADDRESS")
	v.BindEnv("CLINIC_PHONE")
	v.BindEnv("CLINIC_EMAIL")
	v.BindEnv("CLINIC_REG_NO")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// APITimeout converts the millisecond knob to a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// CacheTTL converts the millisecond knob to a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run: the API base URL
// must parse as an absolute http(s) URL, the port must be numeric, and the
// timeout and TTL knobs must be positive.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL is missing a host: %q", c.APIBaseURL)
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}

	if c.APITimeoutMS <= 0 {
		return fmt.Errorf("API_TIMEOUT_MS must be positive, got %d", c.APITimeoutMS)
	}
	if c.CacheTTLMS <= 0 {
		return fmt.Errorf("CACHE_TTL_MS must be positive, got %d", c.CacheTTLMS)
	}

	return nil
}
