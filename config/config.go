// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Load-time configuration for the virtualization session. One virtual CPU
// count per process lifetime; there is no hot-reload because every cache
// and mask derives from it.

package config

import (
	"errors"

	"github.com/kelseyhightower/envconfig"
)

// Config validation errors.
var (
	ErrInvalidNumCPUs    = errors.New("num_cpus must be between 1 and 64")
	ErrInvalidTraceDepth = errors.New("trace_depth must be positive")
)

// Config holds parameters immutable per run, read from CPUVISOR_* variables.
type Config struct {
	// NumCPUs is the virtual CPU count N: the host process will perceive
	// exactly min(N, real) logical processors.
	NumCPUs uint32 `envconfig:"NUM_CPUS" default:"16"`

	// EnableTrace turns on the bounded trace of intercepted operations.
	EnableTrace bool `envconfig:"ENABLE_TRACE" default:"true"`

	// TraceDepth is the number of trace entries retained.
	TraceDepth int `envconfig:"TRACE_DEPTH" default:"64"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("CPUVISOR", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.NumCPUs < 1 || c.NumCPUs > 64 {
		return ErrInvalidNumCPUs
	}
	if c.EnableTrace && c.TraceDepth < 1 {
		return ErrInvalidTraceDepth
	}
	return nil
}
