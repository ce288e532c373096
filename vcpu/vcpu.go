// File: vcpu/vcpu.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The virtual CPU set and the pure mask arithmetic built on it. A Set is
// immutable after construction; every affinity value and processor count
// that leaves the engine passes through one of its methods.

package vcpu

import (
	"fmt"

	"github.com/momentics/cpuvisor/api"
)

// Set is the configured subset of real logical processors the host process
// is permitted to perceive: the low Count bits of a 64-bit affinity mask.
type Set struct {
	count uint32
	mask  api.Affinity
}

// New builds a Set of count virtual CPUs. count must be in
// [1, api.MaxVirtualCPUs].
func New(count uint32) (Set, error) {
	if count < 1 || count > api.MaxVirtualCPUs {
		return Set{}, fmt.Errorf("vcpu: count %d out of range [1,%d]: %w",
			count, api.MaxVirtualCPUs, api.ErrInvalidArgument)
	}
	if count == api.MaxVirtualCPUs {
		return Set{count: count, mask: ^api.Affinity(0)}, nil
	}
	return Set{count: count, mask: api.Affinity(1)<<count - 1}, nil
}

// MustNew is New for counts known valid at compile time.
func MustNew(count uint32) Set {
	s, err := New(count)
	if err != nil {
		panic(err)
	}
	return s
}

// Count returns the number of virtual CPUs.
func (s Set) Count() uint32 { return s.count }

// Mask returns the affinity mask with exactly the low Count bits set.
func (s Set) Mask() api.Affinity { return s.mask }

// ClampCount lowers a total-processor count to the virtual count.
func (s Set) ClampCount(n uint32) uint32 {
	if n > s.count {
		return s.count
	}
	return n
}

// MaskAffinity clears every bit outside the virtual set.
func (s Set) MaskAffinity(a api.Affinity) api.Affinity {
	return a & s.mask
}

// Intersects reports whether a references at least one virtual CPU.
func (s Set) Intersects(a api.Affinity) bool {
	return a&s.mask != 0
}

// AllowsIdeal reports whether an ideal-processor index may be forwarded to
// the platform: either it names a virtual CPU or it is the no-preference
// sentinel.
func (s Set) AllowsIdeal(index uint32) bool {
	return index < s.count || index == api.NoPreference
}

// ReduceIdeal folds an ideal-processor index into the virtual set. The
// no-preference sentinel passes through unchanged.
func (s Set) ReduceIdeal(index uint32) uint32 {
	if index == api.NoPreference {
		return index
	}
	return index % s.count
}
