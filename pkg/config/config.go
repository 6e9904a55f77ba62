// Package config loads the gateway's configuration from a YAML file whose
// path is selected by two environment variables, strictly decoded (unknown
// keys are rejected).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPConfig is the gateway's listen address.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageMedium selects the blob storage backend. Only "local" is
// implemented; the field exists so a future S3/GCS medium slots in
// without a schema change.
type StorageMedium struct {
	Type      string `yaml:"type"`
	Directory string `yaml:"directory"`
}

// StorageConfig wraps the selected medium.
type StorageConfig struct {
	Medium StorageMedium `yaml:"medium"`
}

// CompilerConfig points at the directory deploy uses to stage source
// compiles before handing the result to the Signature Decoder.
type CompilerConfig struct {
	SourceDir string `yaml:"source_dir"`
}

// RegistryConfig configures the Worker Registry and Dispatch subsystem.
type RegistryConfig struct {
	ChannelSize int `yaml:"channel_size"`
	TimeoutSecs int `yaml:"timeout_secs"`
}

// Timeout returns TimeoutSecs as a time.Duration.
func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// LoggingConfig controls the colored console logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
}

// Config is the full gateway configuration schema.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Compiler CompilerConfig `yaml:"compiler"`
	Registry RegistryConfig `yaml:"registry"`
	DBURL    string         `yaml:"db_url"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ApplyDefaults fills in zero-valued fields with sane defaults, applied
// after decode so the YAML file may omit anything it doesn't need to
// override.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Storage.Medium.Type == "" {
		c.Storage.Medium.Type = "local"
	}
	if c.Storage.Medium.Directory == "" {
		c.Storage.Medium.Directory = "./data/blobs"
	}
	if c.Compiler.SourceDir == "" {
		c.Compiler.SourceDir = "./data/sources"
	}
	if c.Registry.ChannelSize == 0 {
		c.Registry.ChannelSize = 16
	}
	if c.Registry.TimeoutSecs == 0 {
		c.Registry.TimeoutSecs = 30
	}
	if c.DBURL == "" {
		c.DBURL = "file:./data/faas.db?_foreign_keys=on"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate rejects a configuration that ApplyDefaults cannot make sound
// (an explicit, non-default value that is still nonsensical).
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: http.port %d out of range", c.HTTP.Port)
	}
	if c.Storage.Medium.Type != "local" {
		return fmt.Errorf("config: unsupported storage.medium.type %q", c.Storage.Medium.Type)
	}
	if c.Registry.ChannelSize <= 0 {
		return fmt.Errorf("config: registry.channel_size must be positive, got %d", c.Registry.ChannelSize)
	}
	if c.Registry.TimeoutSecs <= 0 {
		return fmt.Errorf("config: registry.timeout_secs must be positive, got %d", c.Registry.TimeoutSecs)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// Addr returns the gateway's listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// Load selects and decodes the config file named by two environment
// variables — FAAS_CONFIG_DIR (the directory) and FAAS_ENV (the file stem,
// default "development") — mirroring the original's
// config::Environment::with_prefix("FAAS") convention.
func Load() (*Config, error) {
	dir := os.Getenv("FAAS_CONFIG_DIR")
	if dir == "" {
		dir = "./config"
	}
	env := os.Getenv("FAAS_ENV")
	if env == "" {
		env = "development"
	}

	path := filepath.Join(dir, env+".yaml")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := DecodeStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
