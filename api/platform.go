// File: api/platform.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Platform interface is the boundary to the real, un-virtualized
// operating system: one method per intercepted entry point, with the same
// shapes and the same two-phase size/fill protocol. The engine calls a
// Platform exactly once per cache miss and forwards everything it does not
// reinterpret. platform.New() binds these methods to the real kernel
// routines; fake.New() provides a synthetic implementation for tests.

package api

// Platform exposes the original topology and affinity operations.
//
// The two LogicalProcessorInformation queries follow the platform's size
// protocol: a nil or undersized buf fails with ErrInsufficientBuffer and the
// required byte length written through returnedLength. A nil returnedLength
// is invalid usage; implementations report whatever the real routine reports.
type Platform interface {
	// GetSystemInfo and GetNativeSystemInfo fill info. They cannot fail.
	GetSystemInfo(info *SystemInfo)
	GetNativeSystemInfo(info *SystemInfo)

	// GetProcessAffinityMask reports the process and system affinity masks.
	GetProcessAffinityMask(process Handle) (processMask, systemMask Affinity, err error)

	// SetProcessAffinityMask applies mask to the process.
	SetProcessAffinityMask(process Handle, mask Affinity) error

	// SetThreadAffinityMask applies mask to the thread and reports the
	// previous mask. On failure the previous mask is zero.
	SetThreadAffinityMask(thread Handle, mask Affinity) (previous Affinity, err error)

	// GetProcessGroupAffinity writes up to cap(groups) group numbers and
	// stores the total through count.
	GetProcessGroupAffinity(process Handle, count *uint16, groups []uint16) error

	// GetThreadGroupAffinity fills affinity for the thread.
	GetThreadGroupAffinity(thread Handle, affinity *GroupAffinity) error

	// SetThreadGroupAffinity applies affinity; when previous is non-nil the
	// prior group affinity is stored there.
	SetThreadGroupAffinity(thread Handle, affinity *GroupAffinity, previous *GroupAffinity) error

	// SetThreadIdealProcessor sets the preferred processor index and reports
	// the previous one.
	SetThreadIdealProcessor(thread Handle, processor uint32) (previous uint32, err error)

	// SetThreadIdealProcessorEx is the group-aware ideal-processor variant.
	SetThreadIdealProcessorEx(thread Handle, ideal *ProcessorNumber, previous *ProcessorNumber) error

	// GetLogicalProcessorInformation fills buf with fixed-size legacy
	// topology records and stores the byte length through returnedLength.
	GetLogicalProcessorInformation(buf []byte, returnedLength *uint32) error

	// GetLogicalProcessorInformationEx fills buf with variable-size records
	// of the requested kind.
	GetLogicalProcessorInformationEx(kind RelationshipKind, buf []byte, returnedLength *uint32) error
}

// Detour installs and removes the redirection of the process's topology
// entry points onto a virtualized Platform. The mechanism itself lives
// outside this library; the facade only drives it across the session
// lifecycle.
type Detour interface {
	// Install redirects the intercepted entry points to virtual.
	Install(virtual Platform) error
	// Remove restores the original entry points.
	Remove() error
}
