package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "DIGIBERKAT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App  AppConfig
	API  APIConfig
	Cart CartConfig
	Auth AuthConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DIGIBERKAT_APP_ENV" default:"dev"`
	DebugPort    string `envconfig:"DIGIBERKAT_DEBUG_PORT" default:"9464"`
	LogLevel     string `envconfig:"DIGIBERKAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DIGIBERKAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL        string        `envconfig:"DIGIBERKAT_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"DIGIBERKAT_API_REQUEST_TIMEOUT" default:"12s"`
}

type CartConfig struct {
	DebounceWindow time.Duration `envconfig:"DIGIBERKAT_CART_DEBOUNCE_WINDOW" default:"700ms"`
	EventBuffer    int           `envconfig:"DIGIBERKAT_CART_EVENT_BUFFER" default:"16"`
}

type AuthConfig struct {
	BearerToken string `envconfig:"DIGIBERKAT_BEARER_TOKEN"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url must be http or https, got %q", a.BaseURL)
	}
	if a.RequestTimeout <= 0 {
		return fmt.Errorf("api request timeout must be positive")
	}
	return nil
}
