// File: topology/extended.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Variable-length extended topology format. Every record starts with an
// 8-byte header (relationship kind, declared byte size) followed by a
// kind-specific payload carrying one or more group affinity entries. The
// filter collapses multi-group records to their first group, reduces that
// group to the virtual set and truncates the declared size to cover exactly
// one group slot.

package topology

import (
	"encoding/binary"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/vcpu"
)

// Record header and payload item sizes.
const (
	ExtHeaderSize     = 8
	GroupAffinitySize = 16
	GroupInfoSize     = 48
)

// Absolute field offsets from the start of a record.
const (
	extKindOff = 0
	extSizeOff = 4

	// processor relationship (core, die, module, package)
	procFlagsOff      = 8
	procEfficiencyOff = 9
	procGroupCountOff = 30
	procGroupMaskOff  = 32

	// NUMA node relationship (plain and -ex)
	numaNodeNumberOff = 8
	numaGroupCountOff = 30
	numaGroupMaskOff  = 32

	// cache relationship
	cacheLevelOff      = 8
	cacheAssocOff      = 9
	cacheLineSizeOff   = 10
	cacheSizeOff       = 12
	cacheTypeOff       = 16
	cacheGroupCountOff = 38
	cacheGroupMaskOff  = 40

	// group relationship
	groupMaxCountOff    = 8
	groupActiveCountOff = 10
	groupInfoOff        = 32

	// fields inside one group-info slot
	groupInfoMaxProcOff    = 0
	groupInfoActiveProcOff = 1
	groupInfoMaskOff       = 40
)

// Declared sizes of records truncated to a single group slot.
const (
	ProcessorEntrySize = procGroupMaskOff + GroupAffinitySize
	NumaEntrySize      = numaGroupMaskOff + GroupAffinitySize
	CacheEntrySize     = cacheGroupMaskOff + GroupAffinitySize
	GroupEntrySize     = groupInfoOff + GroupInfoSize
)

// EntryKind reads the relationship kind of a record.
func EntryKind(entry []byte) api.RelationshipKind {
	return api.RelationshipKind(binary.LittleEndian.Uint32(entry[extKindOff:]))
}

// EntrySize reads the declared byte size of a record.
func EntrySize(entry []byte) uint32 {
	return binary.LittleEndian.Uint32(entry[extSizeOff:])
}

// GroupCount returns the number of group slots a record declares (active
// groups for group records). The second result is false for kinds whose
// layout is not recognized and for entries too short to carry the field.
func GroupCount(entry []byte) (uint16, bool) {
	le := binary.LittleEndian
	switch EntryKind(entry) {
	case api.RelationProcessorCore, api.RelationProcessorDie,
		api.RelationProcessorModule, api.RelationProcessorPackage:
		if len(entry) < procGroupCountOff+2 {
			return 0, false
		}
		return le.Uint16(entry[procGroupCountOff:]), true
	case api.RelationNumaNode, api.RelationNumaNodeEx:
		if len(entry) < numaGroupCountOff+2 {
			return 0, false
		}
		return le.Uint16(entry[numaGroupCountOff:]), true
	case api.RelationCache:
		if len(entry) < cacheGroupCountOff+2 {
			return 0, false
		}
		return le.Uint16(entry[cacheGroupCountOff:]), true
	case api.RelationGroup:
		if len(entry) < groupActiveCountOff+2 {
			return 0, false
		}
		return le.Uint16(entry[groupActiveCountOff:]), true
	default:
		return 0, false
	}
}

// PrimaryMask returns a record's first group affinity mask; for group
// records this is the first slot's active-processor mask. The second result
// is false for unrecognized kinds and for entries too short to carry the
// field.
func PrimaryMask(entry []byte) (api.Affinity, bool) {
	le := binary.LittleEndian
	switch EntryKind(entry) {
	case api.RelationProcessorCore, api.RelationProcessorDie,
		api.RelationProcessorModule, api.RelationProcessorPackage:
		if len(entry) < procGroupMaskOff+8 {
			return 0, false
		}
		return api.Affinity(le.Uint64(entry[procGroupMaskOff:])), true
	case api.RelationNumaNode, api.RelationNumaNodeEx:
		if len(entry) < numaGroupMaskOff+8 {
			return 0, false
		}
		return api.Affinity(le.Uint64(entry[numaGroupMaskOff:])), true
	case api.RelationCache:
		if len(entry) < cacheGroupMaskOff+8 {
			return 0, false
		}
		return api.Affinity(le.Uint64(entry[cacheGroupMaskOff:])), true
	case api.RelationGroup:
		if len(entry) < groupInfoOff+groupInfoMaskOff+8 {
			return 0, false
		}
		return api.Affinity(le.Uint64(entry[groupInfoOff+groupInfoMaskOff:])), true
	default:
		return 0, false
	}
}

// Cursor walks a raw extended topology buffer record by record, advancing
// by each record's declared size.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor positions a cursor at the first record of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Next returns the next whole record. The walk ends at the end of the
// buffer, or early on a record whose declared size is smaller than the
// header or overruns the buffer; the remainder cannot be interpreted and is
// discarded.
func (c *Cursor) Next() ([]byte, bool) {
	if c.off+ExtHeaderSize > len(c.buf) {
		return nil, false
	}
	size := int(EntrySize(c.buf[c.off:]))
	if size < ExtHeaderSize || c.off+size > len(c.buf) {
		c.off = len(c.buf)
		return nil, false
	}
	entry := c.buf[c.off : c.off+size]
	c.off += size
	return entry, true
}

// FilterExtended rewrites a raw extended topology buffer against set.
//
// Processor, NUMA and cache records keep only their first group, which must
// intersect the virtual set or the record is culled; processor records with
// no groups at all are culled too. Group records are reduced to a single
// group of at most set.Count() processors. Records of unrecognized kinds
// cannot be reinterpreted and are culled. Survivors are compacted in order
// with their declared sizes shrunk to one group slot. The second result is
// the number of culled records.
func FilterExtended(buf []byte, set vcpu.Set) ([]byte, int) {
	out := make([]byte, 0, len(buf))
	dropped := 0
	cur := NewCursor(buf)
	for {
		entry, ok := cur.Next()
		if !ok {
			break
		}
		if !filterEntry(&out, entry, set) {
			dropped++
		}
	}
	return out, dropped
}

// filterEntry appends the truncated, re-masked copy of entry to out and
// reports whether the entry survived.
func filterEntry(out *[]byte, entry []byte, set vcpu.Set) bool {
	le := binary.LittleEndian
	switch EntryKind(entry) {
	case api.RelationProcessorCore, api.RelationProcessorDie,
		api.RelationProcessorModule, api.RelationProcessorPackage:
		if len(entry) < ProcessorEntrySize {
			return false
		}
		if le.Uint16(entry[procGroupCountOff:]) == 0 {
			return false
		}
		m := api.Affinity(le.Uint64(entry[procGroupMaskOff:]))
		if !set.Intersects(m) {
			return false
		}
		e := appendTruncated(out, entry, ProcessorEntrySize)
		le.PutUint16(e[procGroupCountOff:], 1)
		le.PutUint64(e[procGroupMaskOff:], uint64(set.MaskAffinity(m)))
		return true

	case api.RelationNumaNode, api.RelationNumaNodeEx:
		if len(entry) < NumaEntrySize {
			return false
		}
		m := api.Affinity(le.Uint64(entry[numaGroupMaskOff:]))
		if !set.Intersects(m) {
			return false
		}
		e := appendTruncated(out, entry, NumaEntrySize)
		if le.Uint16(e[numaGroupCountOff:]) > 1 {
			le.PutUint16(e[numaGroupCountOff:], 1)
		}
		le.PutUint64(e[numaGroupMaskOff:], uint64(set.MaskAffinity(m)))
		return true

	case api.RelationCache:
		if len(entry) < CacheEntrySize {
			return false
		}
		m := api.Affinity(le.Uint64(entry[cacheGroupMaskOff:]))
		if !set.Intersects(m) {
			return false
		}
		e := appendTruncated(out, entry, CacheEntrySize)
		if le.Uint16(e[cacheGroupCountOff:]) > 1 {
			le.PutUint16(e[cacheGroupCountOff:], 1)
		}
		le.PutUint64(e[cacheGroupMaskOff:], uint64(set.MaskAffinity(m)))
		return true

	case api.RelationGroup:
		if len(entry) < GroupEntrySize {
			return false
		}
		if le.Uint16(entry[groupActiveCountOff:]) == 0 {
			return false
		}
		e := appendTruncated(out, entry, GroupEntrySize)
		if le.Uint16(e[groupMaxCountOff:]) > 1 {
			le.PutUint16(e[groupMaxCountOff:], 1)
		}
		if le.Uint16(e[groupActiveCountOff:]) > 1 {
			le.PutUint16(e[groupActiveCountOff:], 1)
		}
		info := e[groupInfoOff:]
		n := byte(set.Count())
		if info[groupInfoActiveProcOff] > n {
			info[groupInfoActiveProcOff] = n
		}
		if info[groupInfoMaxProcOff] > n {
			info[groupInfoMaxProcOff] = n
		}
		m := api.Affinity(le.Uint64(info[groupInfoMaskOff:]))
		le.PutUint64(info[groupInfoMaskOff:], uint64(set.MaskAffinity(m)))
		return true

	default:
		return false
	}
}

// appendTruncated copies the first size bytes of entry onto out, patches
// the declared size and returns the appended region for further patching.
func appendTruncated(out *[]byte, entry []byte, size int) []byte {
	start := len(*out)
	*out = append(*out, entry[:size]...)
	e := (*out)[start:]
	binary.LittleEndian.PutUint32(e[extSizeOff:], uint32(size))
	return e
}
