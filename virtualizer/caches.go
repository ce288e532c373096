// File: virtualizer/caches.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Builders for the two filtered topology caches. Each build queries the
// real platform with its own two-phase size/fill protocol, filters the raw
// buffer against the virtual CPU set and publishes the result atomically.
// A failed build publishes nothing; the next call retries from scratch.

package virtualizer

import (
	"errors"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/control"
	"github.com/momentics/cpuvisor/topology"
)

// cachedLegacy returns the filtered legacy topology, building it on first
// use. The published slice is immutable; callers must not write through it.
func (v *Virtualizer) cachedLegacy() ([]byte, error) {
	if snap := v.legacy.Load(); snap != nil {
		return snap.data, nil
	}
	v.legacyMu.Lock()
	defer v.legacyMu.Unlock()
	if snap := v.legacy.Load(); snap != nil {
		return snap.data, nil
	}
	data, err := v.buildLegacy()
	if err != nil {
		control.CacheBuildFailuresTotal.WithLabelValues("legacy").Inc()
		return nil, err
	}
	v.legacy.Store(&legacySnapshot{data: data})
	control.CacheRebuildsTotal.WithLabelValues("legacy").Inc()
	control.CacheBytes.WithLabelValues("legacy").Set(float64(len(data)))
	return data, nil
}

func (v *Virtualizer) buildLegacy() ([]byte, error) {
	var length uint32
	err := v.platform.GetLogicalProcessorInformation(nil, &length)
	if err == nil {
		// Success on a nil buffer means there is no data at all.
		return nil, api.ErrNoData
	}
	if !errors.Is(err, api.ErrInsufficientBuffer) {
		return nil, err
	}
	scratch := make([]byte, length)
	if err := v.platform.GetLogicalProcessorInformation(scratch, &length); err != nil {
		return nil, err
	}
	data, dropped := topology.FilterLegacy(scratch[:length], v.set.Mask())
	control.EntriesDroppedTotal.WithLabelValues("legacy").Add(float64(dropped))
	return data, nil
}

// cachedExtended returns the filtered extended topology for kind,
// rebuilding when the cached kind differs or no cache exists. exMu must be
// held by the caller.
func (v *Virtualizer) cachedExtended(kind api.RelationshipKind) ([]byte, error) {
	if v.exBuf != nil && v.exKind == kind {
		return v.exBuf, nil
	}

	// The extended cache holds one kind at a time; discard unconditionally
	// before rebuilding.
	v.exBuf = nil
	v.exKind = api.RelationNone

	var length uint32
	err := v.platform.GetLogicalProcessorInformationEx(kind, nil, &length)
	if err == nil {
		control.CacheBuildFailuresTotal.WithLabelValues("extended").Inc()
		return nil, api.ErrNoData
	}
	if !errors.Is(err, api.ErrInsufficientBuffer) {
		control.CacheBuildFailuresTotal.WithLabelValues("extended").Inc()
		return nil, err
	}
	scratch := make([]byte, length)
	if err := v.platform.GetLogicalProcessorInformationEx(kind, scratch, &length); err != nil {
		control.CacheBuildFailuresTotal.WithLabelValues("extended").Inc()
		return nil, err
	}

	data, dropped := topology.FilterExtended(scratch[:length], v.set)
	v.exBuf = data
	v.exKind = kind
	control.CacheRebuildsTotal.WithLabelValues("extended").Inc()
	control.EntriesDroppedTotal.WithLabelValues("extended").Add(float64(dropped))
	control.CacheBytes.WithLabelValues("extended").Set(float64(len(data)))
	return data, nil
}
