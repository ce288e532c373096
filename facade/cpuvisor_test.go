// File: facade/cpuvisor_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade_test

import (
	"errors"
	"testing"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/config"
	"github.com/momentics/cpuvisor/facade"
	"github.com/momentics/cpuvisor/fake"
)

// recordingDetour counts install/remove calls and can fail installation.
type recordingDetour struct {
	installed int
	removed   int
	failWith  error
	virtual   api.Platform
}

func (d *recordingDetour) Install(virtual api.Platform) error {
	d.installed++
	if d.failWith != nil {
		return d.failWith
	}
	d.virtual = virtual
	return nil
}

func (d *recordingDetour) Remove() error {
	d.removed++
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	cfg := config.Config{NumCPUs: 16, EnableTrace: true, TraceDepth: 8}
	detour := &recordingDetour{}
	s, err := facade.NewWithConfig(cfg, fake.New(64), detour)
	if err != nil {
		t.Fatal(err)
	}
	if detour.installed != 1 {
		t.Errorf("detour installed %d times, expected 1", detour.installed)
	}

	var info api.SystemInfo
	detour.virtual.GetSystemInfo(&info)
	if info.NumberOfProcessors != 16 {
		t.Errorf("installed platform reports %d processors, expected 16", info.NumberOfProcessors)
	}
	if s.Trace() == nil || s.Trace().Len() != 1 {
		t.Error("the intercepted call must appear in the trace")
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if detour.removed != 1 {
		t.Errorf("detour removed %d times, expected 1", detour.removed)
	}
}

func TestSessionInstallFailure(t *testing.T) {
	cfg := config.Config{NumCPUs: 16}
	boom := errors.New("redirection refused")
	_, err := facade.NewWithConfig(cfg, fake.New(64), &recordingDetour{failWith: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected install failure to surface, got %v", err)
	}
}

func TestSessionRejectsInvalidConfig(t *testing.T) {
	_, err := facade.NewWithConfig(config.Config{NumCPUs: 0}, fake.New(64), nil)
	if !errors.Is(err, config.ErrInvalidNumCPUs) {
		t.Fatalf("expected invalid count, got %v", err)
	}
}

func TestSessionProbes(t *testing.T) {
	s, err := facade.NewWithConfig(config.Config{NumCPUs: 8}, fake.New(64), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	dump := s.Probes().Dump()
	if dump["vcpu.count"] != uint32(8) {
		t.Errorf("vcpu.count = %v, expected 8", dump["vcpu.count"])
	}
	if dump["vcpu.mask"] != uint64(0xFF) {
		t.Errorf("vcpu.mask = %v, expected 0xFF", dump["vcpu.mask"])
	}
}
