package config

import (
	"testing"
)

type testConfig struct {
	Port     int      `env:"TEST_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	LogLevel string   `env:"TEST_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Brokers  []string `env:"TEST_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	cfg := &testConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != "localhost:9092" {
		t.Errorf("Brokers = %v, want [localhost:9092]", cfg.Brokers)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_PORT", "9100")
	t.Setenv("TEST_BROKERS", "k1:9092,k2:9092")

	cfg := &testConfig{}
	if err := Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
	if len(cfg.Brokers) != 2 {
		t.Errorf("Brokers = %v, want two entries", cfg.Brokers)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "verbose")

	cfg := &testConfig{}
	if err := Load(cfg); err == nil {
		t.Fatal("Load() should reject log level outside the allowed set")
	}
}

func TestLoad_ParseFailure(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")

	cfg := &testConfig{}
	if err := Load(cfg); err == nil {
		t.Fatal("Load() should fail on unparseable int")
	}
}
