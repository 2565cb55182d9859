package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_MissingRequired(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", DriverPostgres)
	v.Set("JWT_ACCESS_SECRET", "")
	v.Set("JWT_REFRESH_SECRET", "")

	_, err := Load(v)
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
}

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("JWT_ACCESS_SECRET", "a")
	v.Set("JWT_REFRESH_SECRET", "r")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("driver: got %q", cfg.Database.Driver)
	}
	if cfg.App.HTTPPort != "8080" {
		t.Fatalf("http port default: got %q", cfg.App.HTTPPort)
	}
	if cfg.Matching.PairTimeout != 2*time.Second {
		t.Fatalf("pair timeout default: got %s", cfg.Matching.PairTimeout)
	}
	if cfg.Matching.SweepSpec != "@every 6h" {
		t.Fatalf("sweep spec default: got %q", cfg.Matching.SweepSpec)
	}
	if cfg.JWT.AccessExpiresIn != 15*time.Minute {
		t.Fatalf("access ttl default: got %s", cfg.JWT.AccessExpiresIn)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")
	if _, err := Load(v); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
