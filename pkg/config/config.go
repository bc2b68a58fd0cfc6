package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

const defaultReconnects = 5

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	API     APIConfig     `yaml:"api" json:"api" jsonschema:"description=Backend REST API"`
	Push    PushConfig    `yaml:"push" json:"push" jsonschema:"description=Backend push channel (socket.io)"`
	Preview PreviewConfig `yaml:"preview" json:"preview" jsonschema:"description=Feed preview settings"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// APIConfig holds backend REST API settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"required,description=Backend API base URL (e.g. http://localhost:5000/api/)"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Backend request timeout"`
}

// PushConfig holds push channel settings
type PushConfig struct {
	URL              string        `yaml:"url" json:"url" jsonschema:"description=Push channel host, defaults to api.base_url host"`
	Path             string        `yaml:"path" json:"path" jsonschema:"default=/socket.io/,description=socket.io endpoint path"`
	Namespace        string        `yaml:"namespace" json:"namespace" jsonschema:"default=/,description=socket.io namespace"`
	Reconnects       int           `yaml:"reconnects" json:"reconnects" jsonschema:"default=5,minimum=0,description=Reconnect attempts after the connection drops. 0 disables reconnects"`
	ReconnectDelay   time.Duration `yaml:"reconnect_delay" json:"reconnect_delay" jsonschema:"default=1s,description=Initial delay between reconnects"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" json:"handshake_timeout" jsonschema:"default=10s,description=Websocket handshake timeout"`
}

// PreviewConfig holds feed preview settings
type PreviewConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable feed preview"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Feed fetch timeout"`
	MaxItems  int           `yaml:"max_items" json:"max_items" jsonschema:"default=10,minimum=1,description=Entries shown in preview"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=FeedAdmin/1.0,description=User agent for feed requests"`
}

// Load reads configuration from a YAML file, sets defaults and validates it
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read parses a YAML file with environment variables expanded, without defaults and validation.
// Used when values are overridden before Finalize.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// values where zero is meaningful are preset before parsing
	cfg := Config{Push: PushConfig{Reconnects: defaultReconnects}, Preview: PreviewConfig{Enabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Default returns configuration with all defaults set, api.base_url is left empty
func Default() *Config {
	cfg := &Config{Push: PushConfig{Reconnects: defaultReconnects}, Preview: PreviewConfig{Enabled: true}}
	cfg.setDefaults()
	return cfg
}

// Finalize sets defaults for missing values and validates the result.
// Should be called after any manual override of loaded values.
func (c *Config) Finalize() error {
	c.setDefaults()

	if err := validate(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(c); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}
	return nil
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// api
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}

	// push channel
	if c.Push.Path == "" {
		c.Push.Path = "/socket.io/"
	}
	if c.Push.Namespace == "" {
		c.Push.Namespace = "/"
	}
	if c.Push.ReconnectDelay == 0 {
		c.Push.ReconnectDelay = time.Second
	}
	if c.Push.HandshakeTimeout == 0 {
		c.Push.HandshakeTimeout = 10 * time.Second
	}

	// preview
	if c.Preview.Timeout == 0 {
		c.Preview.Timeout = 15 * time.Second
	}
	if c.Preview.MaxItems == 0 {
		c.Preview.MaxItems = 10
	}
	if c.Preview.UserAgent == "" {
		c.Preview.UserAgent = "FeedAdmin/1.0"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if err := checkURL(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if cfg.Push.URL != "" {
		if err := checkURL(cfg.Push.URL); err != nil {
			return fmt.Errorf("push.url: %w", err)
		}
	}
	if cfg.Push.Reconnects < 0 {
		return fmt.Errorf("push.reconnects must be non-negative")
	}
	if cfg.Preview.MaxItems < 0 {
		return fmt.Errorf("preview.max_items must be non-negative")
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.API.Timeout < 100*time.Millisecond {
		return fmt.Errorf("api timeout must be at least 100ms")
	}

	return nil
}

func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("no host in %q", s)
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// PushURL returns push channel base URL, api.base_url is used if push.url is not set
func (c *Config) PushURL() string {
	if c.Push.URL != "" {
		return c.Push.URL
	}
	return c.API.BaseURL
}
