// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// DefaultFileName is looked up in the working directory and $HOME/.glucoguide.
const DefaultFileName = "glucoguide.toml"

// EnvPrefix prefixes environment overrides, e.g. GLUCOGUIDE_SERVER_PORT.
const EnvPrefix = "GLUCOGUIDE"

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Gateway GatewayConfig `toml:"gateway" mapstructure:"gateway"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

type ServerConfig struct {
	Transport string `toml:"transport" mapstructure:"transport"`
	Host      string `toml:"host" mapstructure:"host"`
	Port      int    `toml:"port" mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path" mapstructure:"db_path"`
	Seed   bool   `toml:"seed" mapstructure:"seed"`
}

// EngineConfig controls fallbacks of the eGL calculator
type EngineConfig struct {
	DefaultGI    float64 `toml:"default_gi" mapstructure:"default_gi"`
	UseDefaultGI bool    `toml:"use_default_gi" mapstructure:"use_default_gi"`
}

// GatewayConfig points at the food identification gateway
type GatewayConfig struct {
	URL            string `toml:"url" mapstructure:"url"`
	APIKey         string `toml:"api_key" mapstructure:"api_key"`
	Model          string `toml:"model" mapstructure:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "http",
			Host:      "0.0.0.0",
			Port:      8011,
		},
		Storage: StorageConfig{
			DBPath: "/data/glucoguide.db",
			Seed:   true,
		},
		Engine: EngineConfig{
			DefaultGI:    50,
			UseDefaultGI: false,
		},
		Gateway: GatewayConfig{
			URL:            "http://mcp-compose-http-proxy:9876",
			Model:          "anthropic/claude-3.5-sonnet",
			TimeoutSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadResult carries the loaded config and where it came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
}

// Load reads configuration from path, or from the default search locations
// when path is empty. A missing file is not an error.
func Load(path string) (*LoadResult, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".glucoguide"))
		}
	}

	result := &LoadResult{}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	result.Config = &cfg
	return result, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("storage.db_path", d.Storage.DBPath)
	v.SetDefault("storage.seed", d.Storage.Seed)
	v.SetDefault("engine.default_gi", d.Engine.DefaultGI)
	v.SetDefault("engine.use_default_gi", d.Engine.UseDefaultGI)
	v.SetDefault("gateway.url", d.Gateway.URL)
	v.SetDefault("gateway.api_key", d.Gateway.APIKey)
	v.SetDefault("gateway.model", d.Gateway.Model)
	v.SetDefault("gateway.timeout_seconds", d.Gateway.TimeoutSeconds)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Save writes the configuration as TOML
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Transport != "http" {
		return &ConfigError{Field: "server.transport", Message: "only http is supported"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}
	if c.Storage.DBPath == "" {
		return &ConfigError{Field: "storage.db_path", Message: "must not be empty"}
	}
	if c.Engine.DefaultGI < 0 || c.Engine.DefaultGI > 110 {
		return &ConfigError{Field: "engine.default_gi", Message: "must be between 0 and 110"}
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		return &ConfigError{Field: "gateway.timeout_seconds", Message: "must be positive"}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
