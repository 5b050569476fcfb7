// Package config loads the gateway's operator-specified server
// configuration: the ceilings a room's capacity, TTL, and size limits
// are validated against before a room is opened.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Server is the top-level shape of the server's TOML configuration
// file. Field names mirror the room controller interface's own
// parameter names (spec.md §6's open/push) so operators read one
// vocabulary across the config file and the API.
type Server struct {
	Listen string `toml:"listen"`

	Room RoomLimits `toml:"room"`

	DataDir string `toml:"data_dir"`
}

// RoomLimits bounds what a room.Open call may request. The gateway
// clamps a requested capacity or TTL that is zero or above its ceiling
// down to the ceiling, and reports the capacity actually granted in the
// open response.
//
// MaxTTL and ConnectTimeout are strings (e.g. "24h", "30s") rather than
// time.Duration, since BurntSushi/toml decodes durations only through
// the TOML string form — parsed by TTL/Timeout below.
type RoomLimits struct {
	MaxCapacity         uint64 `toml:"max_capacity"`
	MaxTTL              string `toml:"max_ttl"`
	LimitBundleSize     int64  `toml:"limit_bundle_size"`
	LimitRepositorySize int64  `toml:"limit_tvc_repository_size"`
	ConnectTimeout      string `toml:"connect_timeout"`
}

// TTL parses MaxTTL.
func (r RoomLimits) TTL() (time.Duration, error) {
	return time.ParseDuration(r.MaxTTL)
}

// Timeout parses ConnectTimeout.
func (r RoomLimits) Timeout() (time.Duration, error) {
	return time.ParseDuration(r.ConnectTimeout)
}

// Default returns the configuration a gateway falls back to when no
// file is given — generous enough for local development, not for
// production multi-tenant use.
func Default() Server {
	return Server{
		Listen: ":8765",
		Room: RoomLimits{
			MaxCapacity:         64,
			MaxTTL:              "24h",
			LimitBundleSize:     64 << 20,
			LimitRepositorySize: 512 << 20,
			ConnectTimeout:      "30s",
		},
		DataDir: "./meltos-data",
	}
}

// Load reads and decodes a TOML server configuration file, starting
// from Default so an operator's file may set only the fields they want
// to override.
func Load(path string) (Server, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Server{}, fmt.Errorf("config: load %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects a configuration with nonsensical limits before the
// gateway starts serving rooms against it.
func (s Server) Validate() error {
	if s.Room.MaxCapacity == 0 {
		return fmt.Errorf("config: room.max_capacity must be positive")
	}
	if s.Room.LimitRepositorySize <= 0 {
		return fmt.Errorf("config: room.limit_tvc_repository_size must be positive")
	}
	if s.Room.LimitBundleSize <= 0 {
		return fmt.Errorf("config: room.limit_bundle_size must be positive")
	}
	if _, err := s.Room.TTL(); err != nil {
		return fmt.Errorf("config: room.max_ttl: %w", err)
	}
	if _, err := s.Room.Timeout(); err != nil {
		return fmt.Errorf("config: room.connect_timeout: %w", err)
	}
	return nil
}

// Save atomically writes cfg to path, following odvcencio-got's
// write-to-tempfile-then-rename pattern (pkg/repo/config.go) so a
// crash mid-write never leaves a truncated config file behind.
func Save(path string, cfg Server) error {
	dir := "."
	if idx := lastSlash(path); idx >= 0 {
		dir = path[:idx]
	}

	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("config: save %q: tempfile: %w", path, err)
	}
	tmpName := tmp.Name()

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config: save %q: encode: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: save %q: close: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: save %q: rename: %w", path, err)
	}
	return nil
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
