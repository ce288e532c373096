// File: topology/encode.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Builders for composing raw extended topology buffers. The synthetic
// platform and the package tests use these to produce byte sequences with
// the exact layout the real platform emits.

package topology

import (
	"encoding/binary"

	"github.com/momentics/cpuvisor/api"
)

// GroupInfo describes one group slot of a processor-group record.
type GroupInfo struct {
	Maximum uint8
	Active  uint8
	Mask    api.Affinity
}

func newEntry(kind api.RelationshipKind, size int) []byte {
	entry := make([]byte, size)
	binary.LittleEndian.PutUint32(entry[extKindOff:], uint32(kind))
	binary.LittleEndian.PutUint32(entry[extSizeOff:], uint32(size))
	return entry
}

func putGroupAffinity(dst []byte, ga api.GroupAffinity) {
	binary.LittleEndian.PutUint64(dst, uint64(ga.Mask))
	binary.LittleEndian.PutUint16(dst[8:], ga.Group)
}

// AppendProcessor appends a processor-relation record (core, die, module or
// package) carrying the given group affinities.
func AppendProcessor(dst []byte, kind api.RelationshipKind, flags, efficiencyClass uint8, groups ...api.GroupAffinity) []byte {
	entry := newEntry(kind, procGroupMaskOff+len(groups)*GroupAffinitySize)
	entry[procFlagsOff] = flags
	entry[procEfficiencyOff] = efficiencyClass
	binary.LittleEndian.PutUint16(entry[procGroupCountOff:], uint16(len(groups)))
	for i, ga := range groups {
		putGroupAffinity(entry[procGroupMaskOff+i*GroupAffinitySize:], ga)
	}
	return append(dst, entry...)
}

// AppendNumaNode appends a NUMA-node record. kind must be RelationNumaNode
// or RelationNumaNodeEx; at least one group is required, since the primary
// group mask is part of the fixed payload.
func AppendNumaNode(dst []byte, kind api.RelationshipKind, node uint32, groups ...api.GroupAffinity) []byte {
	entry := newEntry(kind, numaGroupMaskOff+len(groups)*GroupAffinitySize)
	binary.LittleEndian.PutUint32(entry[numaNodeNumberOff:], node)
	binary.LittleEndian.PutUint16(entry[numaGroupCountOff:], uint16(len(groups)))
	for i, ga := range groups {
		putGroupAffinity(entry[numaGroupMaskOff+i*GroupAffinitySize:], ga)
	}
	return append(dst, entry...)
}

// AppendCache appends a cache record.
func AppendCache(dst []byte, level, associativity uint8, lineSize uint16, cacheSize, cacheType uint32, groups ...api.GroupAffinity) []byte {
	entry := newEntry(api.RelationCache, cacheGroupMaskOff+len(groups)*GroupAffinitySize)
	entry[cacheLevelOff] = level
	entry[cacheAssocOff] = associativity
	binary.LittleEndian.PutUint16(entry[cacheLineSizeOff:], lineSize)
	binary.LittleEndian.PutUint32(entry[cacheSizeOff:], cacheSize)
	binary.LittleEndian.PutUint32(entry[cacheTypeOff:], cacheType)
	binary.LittleEndian.PutUint16(entry[cacheGroupCountOff:], uint16(len(groups)))
	for i, ga := range groups {
		putGroupAffinity(entry[cacheGroupMaskOff+i*GroupAffinitySize:], ga)
	}
	return append(dst, entry...)
}

// AppendGroup appends a processor-group record with one slot per info.
func AppendGroup(dst []byte, maximumGroups uint16, infos ...GroupInfo) []byte {
	entry := newEntry(api.RelationGroup, groupInfoOff+len(infos)*GroupInfoSize)
	binary.LittleEndian.PutUint16(entry[groupMaxCountOff:], maximumGroups)
	binary.LittleEndian.PutUint16(entry[groupActiveCountOff:], uint16(len(infos)))
	for i, gi := range infos {
		slot := entry[groupInfoOff+i*GroupInfoSize:]
		slot[groupInfoMaxProcOff] = gi.Maximum
		slot[groupInfoActiveProcOff] = gi.Active
		binary.LittleEndian.PutUint64(slot[groupInfoMaskOff:], uint64(gi.Mask))
	}
	return append(dst, entry...)
}

// AppendRaw appends a record of an arbitrary kind with an opaque payload.
func AppendRaw(dst []byte, kind api.RelationshipKind, payload []byte) []byte {
	entry := newEntry(kind, ExtHeaderSize+len(payload))
	copy(entry[ExtHeaderSize:], payload)
	return append(dst, entry...)
}
