// File: topology/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package topology implements the two processor-topology wire formats and
// the pure filters that rewrite them against a virtual CPU set.
//
// The legacy format is a flat array of fixed 32-byte records. The extended
// format is a sequence of variable-length records, each declaring its own
// byte size; records are walked with a Cursor that advances by the declared
// size and must never be indexed with a fixed stride.
//
// Both filters are stable: surviving records keep their relative order and
// are compacted with no gaps. Records that do not reference the virtual set
// are dropped entirely, never zero-filled. All offsets follow the 64-bit
// platform layout, least significant byte first.
package topology
