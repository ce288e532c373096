// File: topology/legacy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-record legacy topology format: 32 bytes per record, an affinity
// mask over real processors, a relationship kind and a 16-byte payload
// whose meaning depends on the kind. The payload is opaque here; filtering
// only reads and rewrites the mask.

package topology

import (
	"encoding/binary"

	"github.com/momentics/cpuvisor/api"
)

// LegacyEntrySize is the size of one legacy record on 64-bit platforms.
const LegacyEntrySize = 32

const (
	legacyMaskOff    = 0
	legacyKindOff    = 8
	legacyPayloadOff = 16
)

// LegacyMask reads a record's processor affinity mask.
func LegacyMask(entry []byte) api.Affinity {
	return api.Affinity(binary.LittleEndian.Uint64(entry[legacyMaskOff:]))
}

// LegacyKind reads a record's relationship kind.
func LegacyKind(entry []byte) api.RelationshipKind {
	return api.RelationshipKind(binary.LittleEndian.Uint32(entry[legacyKindOff:]))
}

// FilterLegacy rewrites a raw legacy topology buffer against mask. Records
// whose affinity does not intersect mask are culled; survivors keep their
// order and payload with the affinity reduced to the intersection. Trailing
// bytes that do not form a whole record are discarded. The second result is
// the number of culled records.
func FilterLegacy(buf []byte, mask api.Affinity) ([]byte, int) {
	out := make([]byte, 0, len(buf))
	dropped := 0
	for off := 0; off+LegacyEntrySize <= len(buf); off += LegacyEntrySize {
		entry := buf[off : off+LegacyEntrySize]
		m := LegacyMask(entry)
		if m&mask == 0 {
			dropped++
			continue
		}
		out = append(out, entry...)
		binary.LittleEndian.PutUint64(out[len(out)-LegacyEntrySize:], uint64(m&mask))
	}
	return out, dropped
}

// AppendLegacy appends one legacy record to dst and returns the extended
// slice. Used by synthetic platforms and tests to compose raw buffers.
func AppendLegacy(dst []byte, mask api.Affinity, kind api.RelationshipKind, payload [16]byte) []byte {
	var entry [LegacyEntrySize]byte
	binary.LittleEndian.PutUint64(entry[legacyMaskOff:], uint64(mask))
	binary.LittleEndian.PutUint32(entry[legacyKindOff:], uint32(kind))
	copy(entry[legacyPayloadOff:], payload[:])
	return append(dst, entry[:]...)
}
