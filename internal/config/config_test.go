package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8011 {
		t.Errorf("Server.Port = %d, want 8011", cfg.Server.Port)
	}
	if cfg.Engine.DefaultGI != 50 {
		t.Errorf("Engine.DefaultGI = %v, want 50", cfg.Engine.DefaultGI)
	}
	if cfg.Engine.UseDefaultGI {
		t.Error("Engine.UseDefaultGI should default to false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"transport", func(c *Config) { c.Server.Transport = "stdio" }, "server.transport"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"db path", func(c *Config) { c.Storage.DBPath = "" }, "storage.db_path"},
		{"default gi", func(c *Config) { c.Engine.DefaultGI = 120 }, "engine.default_gi"},
		{"timeout", func(c *Config) { c.Gateway.TimeoutSeconds = 0 }, "gateway.timeout_seconds"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", DefaultFileName)

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Storage.DBPath = "/tmp/test.db"
	cfg.Engine.UseDefaultGI = true
	cfg.Logging.Format = "json"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	result, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.UsedDefaults {
		t.Error("UsedDefaults = true, want false")
	}
	if result.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, path)
	}

	got := result.Config
	if got.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", got.Server.Port)
	}
	if got.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("Storage.DBPath = %q", got.Storage.DBPath)
	}
	if !got.Engine.UseDefaultGI {
		t.Error("Engine.UseDefaultGI = false, want true")
	}
	if got.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", got.Logging.Format)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9200\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200", result.Config.Server.Port)
	}
	if result.Config.Engine.DefaultGI != 50 {
		t.Errorf("Engine.DefaultGI = %v, want default 50", result.Config.Engine.DefaultGI)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.toml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GLUCOGUIDE_SERVER_PORT", "9300")

	result, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Server.Port != 9300 {
		t.Errorf("Server.Port = %d, want 9300 from env", result.Config.Server.Port)
	}
}

func TestLoadInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
}
