// File: api/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral CPU topology types shared by every cpuvisor package.
// The shapes mirror the platform's own topology records bit for bit so that
// filtered buffers can be handed back to callers unchanged.

package api

// Affinity is a bit pattern over logical processors (a KAFFINITY value on
// 64-bit platforms). Bit i set means logical processor i is included.
type Affinity uint64

// Handle is an opaque process or thread handle forwarded to the platform.
type Handle uintptr

// RelationshipKind is the category of topology information carried by a
// logical processor information record.
type RelationshipKind uint32

// Relationship kinds, in the platform's numbering.
const (
	RelationProcessorCore RelationshipKind = iota
	RelationNumaNode
	RelationCache
	RelationProcessorPackage
	RelationGroup
	RelationProcessorDie
	RelationNumaNodeEx
	RelationProcessorModule

	// RelationAll requests records of every kind at once.
	RelationAll RelationshipKind = 0xffff

	// RelationNone marks an empty extended topology cache.
	RelationNone RelationshipKind = 0xffffffff
)

var relationshipNames = []string{
	"RelationProcessorCore", "RelationNumaNode", "RelationCache",
	"RelationProcessorPackage", "RelationGroup", "RelationProcessorDie",
	"RelationNumaNodeEx", "RelationProcessorModule",
}

// String returns the platform name of the relationship kind.
func (k RelationshipKind) String() string {
	if int(k) < len(relationshipNames) {
		return relationshipNames[k]
	}
	if k == RelationAll {
		return "RelationAll"
	}
	return "Unknown"
}

// NoPreference is the ideal-processor sentinel meaning "let the scheduler
// choose" (MAXIMUM_PROCESSORS on the platform). It is never reduced or
// rejected by the mask engine.
const NoPreference uint32 = 64

// MaxVirtualCPUs bounds the virtual CPU count representable in a single
// 64-bit Affinity. Wider counts need a wider mask representation.
const MaxVirtualCPUs = 64

// SystemInfo mirrors the platform's SYSTEM_INFO record.
type SystemInfo struct {
	ProcessorArchitecture     uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       Affinity
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// GroupAffinity is a (processor group, affinity mask) pair.
type GroupAffinity struct {
	Mask  Affinity
	Group uint16
}

// ProcessorNumber identifies one logical processor by group and index.
type ProcessorNumber struct {
	Group    uint16
	Number   uint8
	Reserved uint8
}
