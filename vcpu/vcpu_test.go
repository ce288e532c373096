// File: vcpu/vcpu_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package vcpu_test

import (
	"errors"
	"testing"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/vcpu"
)

func TestNewRejectsOutOfRangeCounts(t *testing.T) {
	for _, count := range []uint32{0, 65, 1000} {
		if _, err := vcpu.New(count); !errors.Is(err, api.ErrInvalidArgument) {
			t.Errorf("New(%d): expected invalid argument, got %v", count, err)
		}
	}
}

func TestMaskHasExactlyLowCountBits(t *testing.T) {
	cases := []struct {
		count uint32
		mask  api.Affinity
	}{
		{1, 0x1},
		{16, 0xFFFF},
		{63, 0x7FFFFFFFFFFFFFFF},
		{64, 0xFFFFFFFFFFFFFFFF},
	}
	for _, c := range cases {
		s := vcpu.MustNew(c.count)
		if s.Mask() != c.mask {
			t.Errorf("count %d: mask %#x, expected %#x", c.count, uint64(s.Mask()), uint64(c.mask))
		}
	}
}

func TestMaskAffinityClearsBitsOutsideSet(t *testing.T) {
	for _, count := range []uint32{1, 7, 16, 32, 64} {
		s := vcpu.MustNew(count)
		for _, a := range []api.Affinity{0, 1, 0xDEADBEEF, ^api.Affinity(0), 0xFFFF0000FFFF} {
			masked := s.MaskAffinity(a)
			if masked&^s.Mask() != 0 {
				t.Errorf("count %d: MaskAffinity(%#x) = %#x has bits outside set",
					count, uint64(a), uint64(masked))
			}
			if masked != a&s.Mask() {
				t.Errorf("count %d: MaskAffinity(%#x) = %#x, expected %#x",
					count, uint64(a), uint64(masked), uint64(a&s.Mask()))
			}
		}
	}
}

func TestClampCount(t *testing.T) {
	s := vcpu.MustNew(16)
	if got := s.ClampCount(64); got != 16 {
		t.Errorf("ClampCount(64) = %d, expected 16", got)
	}
	if got := s.ClampCount(8); got != 8 {
		t.Errorf("ClampCount(8) = %d, expected 8", got)
	}
	if got := s.ClampCount(16); got != 16 {
		t.Errorf("ClampCount(16) = %d, expected 16", got)
	}
}

func TestAllowsIdeal(t *testing.T) {
	s := vcpu.MustNew(16)
	if !s.AllowsIdeal(0) || !s.AllowsIdeal(15) {
		t.Error("indices inside the set must be allowed")
	}
	if s.AllowsIdeal(16) || s.AllowsIdeal(17) {
		t.Error("indices outside the set must be rejected")
	}
	if !s.AllowsIdeal(api.NoPreference) {
		t.Error("the no-preference sentinel must pass")
	}
}

func TestReduceIdeal(t *testing.T) {
	s := vcpu.MustNew(16)
	if got := s.ReduceIdeal(33); got != 1 {
		t.Errorf("ReduceIdeal(33) = %d, expected 1", got)
	}
	if got := s.ReduceIdeal(5); got != 5 {
		t.Errorf("ReduceIdeal(5) = %d, expected 5", got)
	}
	if got := s.ReduceIdeal(api.NoPreference); got != api.NoPreference {
		t.Errorf("ReduceIdeal(sentinel) = %d, expected sentinel unchanged", got)
	}
}

func TestIntersects(t *testing.T) {
	s := vcpu.MustNew(16)
	if !s.Intersects(0x10000 | 0x8) {
		t.Error("mask touching the set must intersect")
	}
	if s.Intersects(0xFFFF0000) {
		t.Error("mask entirely above the set must not intersect")
	}
}
