// Package config loads engine configuration overrides from a structured
// TOML file via BurntSushi/toml.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// FileConfig is the on-disk shape of an engine configuration override file,
// mirroring §6's enumerated Configuration surface.
type FileConfig struct {
	MaxCycles      int    `toml:"max_cycles"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	DebugMode      bool   `toml:"debug_mode"`
	EnableStats    bool   `toml:"enable_stats"`
	EnableTracing  bool   `toml:"enable_tracing"`
	EnableMetrics  bool   `toml:"enable_metrics"`
	LogLevel       string `toml:"log_level"`
	TraceBufferCap int    `toml:"trace_buffer_capacity"`
}

// Load parses a TOML file at path into a FileConfig.
func Load(path string) (*FileConfig, error) {
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("loading engine config from %s: %w", path, err)
	}
	return &fc, nil
}
