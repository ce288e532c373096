// File: config/config_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config_test

import (
	"errors"
	"testing"

	"github.com/momentics/cpuvisor/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumCPUs != 16 {
		t.Errorf("NumCPUs = %d, expected 16", cfg.NumCPUs)
	}
	if !cfg.EnableTrace {
		t.Error("trace must be on by default")
	}
	if cfg.TraceDepth != 64 {
		t.Errorf("TraceDepth = %d, expected 64", cfg.TraceDepth)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CPUVISOR_NUM_CPUS", "4")
	t.Setenv("CPUVISOR_ENABLE_TRACE", "false")
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumCPUs != 4 {
		t.Errorf("NumCPUs = %d, expected 4", cfg.NumCPUs)
	}
	if cfg.EnableTrace {
		t.Error("trace must be off")
	}
}

func TestLoadRejectsOutOfRangeCount(t *testing.T) {
	for _, value := range []string{"0", "65"} {
		t.Setenv("CPUVISOR_NUM_CPUS", value)
		if _, err := config.Load(); !errors.Is(err, config.ErrInvalidNumCPUs) {
			t.Errorf("NUM_CPUS=%s: expected invalid count, got %v", value, err)
		}
	}
}

func TestValidateTraceDepth(t *testing.T) {
	cfg := config.Config{NumCPUs: 16, EnableTrace: true, TraceDepth: 0}
	if err := cfg.Validate(); !errors.Is(err, config.ErrInvalidTraceDepth) {
		t.Errorf("expected invalid trace depth, got %v", err)
	}

	// An unused trace depth is not validated.
	cfg.EnableTrace = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected depth to be ignored when tracing is off, got %v", err)
	}
}
