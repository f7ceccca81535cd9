// File: server/types.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-canvas/protocol"
)

// Config holds all bridge configuration parameters.
type Config struct {
	ListenAddr        string `yaml:"listen_addr"`         // TCP bind address for the websocket socket
	PagePath          string `yaml:"page_path"`           // HTML page served on GET /; empty selects the embedded page
	MaxHandshakeBytes int    `yaml:"max_handshake_bytes"` // request head size limit
	MaxWidth          int    `yaml:"max_width"`           // snapshots wider than this are downscaled (0 = unbounded)
	MaxHeight         int    `yaml:"max_height"`          // snapshots taller than this are downscaled (0 = unbounded)
	AdminAddr         string `yaml:"admin_addr"`          // metrics/debug listener; empty disables it
	FrameRate         int    `yaml:"frame_rate"`          // snapshots per second published by the host loop
	SnapshotPath      string `yaml:"snapshot_path"`       // image file polled by the host loop
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:        ":8080",
		MaxHandshakeBytes: protocol.MaxHandshakeHeadersSize,
		FrameRate:         30,
	}
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the bridge cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("listen_addr must be set")
	case c.MaxHandshakeBytes < 0:
		return fmt.Errorf("max_handshake_bytes must not be negative")
	case c.MaxWidth < 0 || c.MaxHeight < 0:
		return fmt.Errorf("max_width and max_height must not be negative")
	case c.FrameRate <= 0:
		return fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate)
	}
	return nil
}
