package config

import (
	"strings"
	"testing"
)

func TestDecodeStrictRejectsUnknownField(t *testing.T) {
	var cfg Config
	err := DecodeStrict(strings.NewReader("bogus_field: 1\n"), &cfg)
	if err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Storage.Medium.Type != "local" {
		t.Errorf("Storage.Medium.Type = %q, want local", cfg.Storage.Medium.Type)
	}
	if cfg.Registry.ChannelSize != 16 {
		t.Errorf("Registry.ChannelSize = %d, want 16", cfg.Registry.ChannelSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() after ApplyDefaults: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}}
	cfg.ApplyDefaults()
	cfg.HTTP.Port = 70000 // ApplyDefaults would not touch a nonzero value
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an out-of-range port")
	}
}

func TestValidateRejectsUnsupportedStorageMedium(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Storage.Medium.Type = "s3"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unsupported storage medium")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an unknown logging level")
	}
}

func TestRegistryConfigTimeout(t *testing.T) {
	rc := RegistryConfig{TimeoutSecs: 5}
	if rc.Timeout().Seconds() != 5 {
		t.Errorf("Timeout() = %v, want 5s", rc.Timeout())
	}
}

func TestDecodeFullConfig(t *testing.T) {
	yamlDoc := `
http:
  host: "127.0.0.1"
  port: 9090
storage:
  medium:
    type: local
    directory: /data/blobs
compiler:
  source_dir: /data/src
registry:
  channel_size: 32
  timeout_secs: 10
db_url: "file:./faas.db"
logging:
  level: debug
  colors: false
`
	var cfg Config
	if err := DecodeStrict(strings.NewReader(yamlDoc), &cfg); err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Registry.ChannelSize != 32 || cfg.Logging.Level != "debug" {
		t.Fatalf("decoded config = %+v", cfg)
	}
}
