package apifit

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML client configuration file format:
//
//	service:
//	  baseURL: https://api.example.com/
//	  headers:
//	    X-Env: staging
//	  rateLimit:
//	    rps: 10
//	    burst: 5
//	authentication:
//	  user: foo
//	  password: bar
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Auth    AuthConfig    `yaml:"authentication,omitempty"`
}

type ServiceConfig struct {
	BaseURL      string            `yaml:"baseURL"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Params       map[string]string `yaml:"params,omitempty"`
	Cookies      map[string]string `yaml:"cookies,omitempty"`
	MaxBodyBytes int64             `yaml:"maxBodyBytes,omitempty"`
	RateLimit    *RateLimitConfig  `yaml:"rateLimit,omitempty"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type AuthConfig struct {
	// Authorization is sent verbatim in the Authorization header.
	// Mutually exclusive with User/Password.
	Authorization string `yaml:"authorization,omitempty"`
	User          string `yaml:"user,omitempty"`
	Password      string `yaml:"password,omitempty"`
}

// LoadConfig reads and validates a client config file.
func LoadConfig(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// WriteConfig writes the config file with owner-only permissions, it
// may carry credentials.
func WriteConfig(path string, config *Config) error {
	contents, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.baseURL is not set")
	}
	if _, err := url.Parse(c.Service.BaseURL); err != nil {
		return fmt.Errorf("service.baseURL: %w", err)
	}
	if c.Service.MaxBodyBytes < 0 {
		return fmt.Errorf("service.maxBodyBytes must not be negative")
	}
	if rl := c.Service.RateLimit; rl != nil {
		if rl.RPS <= 0 {
			return fmt.Errorf("service.rateLimit.rps must be positive")
		}
		if rl.Burst <= 0 {
			return fmt.Errorf("service.rateLimit.burst must be positive")
		}
	}
	if c.Auth.Authorization != "" && (c.Auth.User != "" || c.Auth.Password != "") {
		return fmt.Errorf("authentication.authorization and authentication.user/password are mutually exclusive")
	}
	return nil
}

// Options converts the config into client options.
func (c *Config) Options() []Option {
	var opts []Option
	if len(c.Service.Headers) > 0 {
		opts = append(opts, DefaultHeaders(Values(c.Service.Headers)))
	}
	if len(c.Service.Params) > 0 {
		opts = append(opts, DefaultParams(Values(c.Service.Params)))
	}
	if len(c.Service.Cookies) > 0 {
		opts = append(opts, DefaultCookies(Values(c.Service.Cookies)))
	}
	if c.Service.MaxBodyBytes > 0 {
		opts = append(opts, MaxBody(c.Service.MaxBodyBytes))
	}
	if rl := c.Service.RateLimit; rl != nil {
		opts = append(opts, RateLimit(rl.RPS, rl.Burst))
	}
	if c.Auth.Authorization != "" {
		opts = append(opts, AuthorizationHeader(c.Auth.Authorization))
	}
	if c.Auth.User != "" || c.Auth.Password != "" {
		opts = append(opts, BasicAuth(c.Auth.User, c.Auth.Password))
	}
	return opts
}

// NewClientFromConfigFile creates a client for the endpoint table
// using base URL and options from the config file.
func NewClientFromConfigFile(path string, endpoints []Endpoint, extra ...Option) (*Client, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	opts := append(config.Options(), extra...)
	return NewClient(endpoints, config.Service.BaseURL, opts...), nil
}
