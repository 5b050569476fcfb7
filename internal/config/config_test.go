package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meltos.toml")

	cfg := Default()
	cfg.Listen = ":9999"
	cfg.Room.MaxCapacity = 8

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Listen != ":9999" {
		t.Fatalf("Listen = %q, want %q", loaded.Listen, ":9999")
	}
	if loaded.Room.MaxCapacity != 8 {
		t.Fatalf("Room.MaxCapacity = %d, want 8", loaded.Room.MaxCapacity)
	}

	ttl, err := loaded.Room.TTL()
	if err != nil {
		t.Fatalf("TTL() error: %v", err)
	}
	if ttl != 24*time.Hour {
		t.Fatalf("TTL() = %v, want 24h", ttl)
	}
}

func TestValidateRejectsZeroCapacity(t *testing.T) {
	cfg := Default()
	cfg.Room.MaxCapacity = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with zero capacity, want error")
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := Default()
	cfg.Room.MaxTTL = "not-a-duration"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with malformed max_ttl, want error")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load() on missing file, want error")
	}
}
