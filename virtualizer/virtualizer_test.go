// File: virtualizer/virtualizer_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package virtualizer_test

import (
	"errors"
	"testing"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/fake"
	"github.com/momentics/cpuvisor/vcpu"
	"github.com/momentics/cpuvisor/virtualizer"
)

func newEngine(cpus int) (*virtualizer.Virtualizer, *fake.Platform) {
	p := fake.New(cpus)
	return virtualizer.New(vcpu.MustNew(16), p), p
}

func TestSystemInfoClampedTo16(t *testing.T) {
	v, _ := newEngine(64)
	var info api.SystemInfo
	v.GetSystemInfo(&info)
	if info.NumberOfProcessors != 16 {
		t.Errorf("processors = %d, expected 16", info.NumberOfProcessors)
	}
	if info.ActiveProcessorMask != 0xFFFF {
		t.Errorf("active mask = %#x, expected 0xFFFF", uint64(info.ActiveProcessorMask))
	}

	var native api.SystemInfo
	v.GetNativeSystemInfo(&native)
	if native.NumberOfProcessors != 16 {
		t.Errorf("native processors = %d, expected 16", native.NumberOfProcessors)
	}
}

func TestSystemInfoBelowLimitUntouched(t *testing.T) {
	v, _ := newEngine(8)
	var info api.SystemInfo
	v.GetSystemInfo(&info)
	if info.NumberOfProcessors != 8 {
		t.Errorf("processors = %d, expected 8", info.NumberOfProcessors)
	}
}

func TestProcessAffinityMasked(t *testing.T) {
	v, _ := newEngine(64)
	processMask, systemMask, err := v.GetProcessAffinityMask(0)
	if err != nil {
		t.Fatal(err)
	}
	if processMask != 0xFFFF || systemMask != 0xFFFF {
		t.Errorf("masks %#x/%#x, expected 0xFFFF/0xFFFF",
			uint64(processMask), uint64(systemMask))
	}
}

func TestSetProcessAffinityMaskedBeforeApply(t *testing.T) {
	v, p := newEngine(64)
	if err := v.SetProcessAffinityMask(0, ^api.Affinity(0)); err != nil {
		t.Fatal(err)
	}
	processMask, _, _ := p.GetProcessAffinityMask(0)
	if processMask != 0xFFFF {
		t.Errorf("platform received %#x, expected 0xFFFF", uint64(processMask))
	}
}

func TestSetThreadAffinityMaskedBothWays(t *testing.T) {
	v, _ := newEngine(64)
	previous, err := v.SetThreadAffinityMask(0, 0x00FF00FF00FF00FF)
	if err != nil {
		t.Fatal(err)
	}
	// The fake's initial thread mask covers all 64 CPUs; the surfaced
	// previous mask must not.
	if previous != 0xFFFF {
		t.Errorf("previous = %#x, expected 0xFFFF", uint64(previous))
	}
}

func TestIdealProcessorRejectedWithoutPlatformCall(t *testing.T) {
	v, p := newEngine(64)
	if _, err := v.SetThreadIdealProcessor(0, 17); !errors.Is(err, api.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if p.Calls("SetThreadIdealProcessor") != 0 {
		t.Error("the real operation must not be invoked for a rejected index")
	}
}

func TestIdealProcessorResultReduced(t *testing.T) {
	v, p := newEngine(64)
	p.SetIdeal(33)
	previous, err := v.SetThreadIdealProcessor(0, api.NoPreference)
	if err != nil {
		t.Fatal(err)
	}
	if previous != 1 {
		t.Errorf("previous = %d, expected 33 mod 16 = 1", previous)
	}
}

func TestIdealProcessorInRangeForwarded(t *testing.T) {
	v, p := newEngine(64)
	if _, err := v.SetThreadIdealProcessor(0, 5); err != nil {
		t.Fatal(err)
	}
	if p.Calls("SetThreadIdealProcessor") != 1 {
		t.Error("in-range index must reach the platform")
	}
}

func TestGroupAffinityPassedThrough(t *testing.T) {
	v, _ := newEngine(64)

	// The full 64-bit thread mask comes back unmasked: group affinity is
	// observed, not virtualized.
	var ga api.GroupAffinity
	if err := v.GetThreadGroupAffinity(0, &ga); err != nil {
		t.Fatal(err)
	}
	if ga.Mask != ^api.Affinity(0) {
		t.Errorf("group mask = %#x, expected full 64-bit mask", uint64(ga.Mask))
	}

	want := api.GroupAffinity{Mask: 0xFF00FF00FF00FF00, Group: 1}
	var previous api.GroupAffinity
	if err := v.SetThreadGroupAffinity(0, &want, &previous); err != nil {
		t.Fatal(err)
	}
	var got api.GroupAffinity
	if err := v.SetThreadGroupAffinity(0, &api.GroupAffinity{}, &got); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("platform stored %+v, expected %+v untouched", got, want)
	}
}

func TestSetThreadIdealProcessorExPassedThrough(t *testing.T) {
	v, p := newEngine(64)
	ideal := api.ProcessorNumber{Number: 42}
	var previous api.ProcessorNumber
	if err := v.SetThreadIdealProcessorEx(0, &ideal, &previous); err != nil {
		t.Fatal(err)
	}
	if p.Calls("SetThreadIdealProcessorEx") != 1 {
		t.Error("call must reach the platform")
	}
}
