// File: virtualizer/virtualizer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Virtualizer context object: virtual CPU set, both topology caches and
// the observability hooks. Constructed at attach, closed at detach.

package virtualizer

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/control"
	"github.com/momentics/cpuvisor/vcpu"
)

// Virtualizer presents a falsified topology of set.Count() logical
// processors on top of platform. Safe for use from any number of
// concurrent goroutines or threads.
type Virtualizer struct {
	set      vcpu.Set
	platform api.Platform

	// Legacy topology cache: built at most once, immutable after publish.
	// legacyMu is held only across the build; readers load the pointer
	// lock-free.
	legacyMu sync.Mutex
	legacy   atomic.Pointer[legacySnapshot]

	// Extended topology cache: one relationship kind at a time. exMu is
	// held across the kind check, any rebuild and the copy-out, so a reader
	// never observes a buffer mid-replacement.
	exMu   sync.Mutex
	exKind api.RelationshipKind
	exBuf  []byte

	first *control.FirstCall
	trace *control.Trace
}

type legacySnapshot struct {
	data []byte
}

// Option configures a Virtualizer.
type Option func(*Virtualizer)

// WithTrace records every intercepted operation into t.
func WithTrace(t *control.Trace) Option {
	return func(v *Virtualizer) { v.trace = t }
}

// New creates a Virtualizer over platform. Both caches are built lazily on
// first use.
func New(set vcpu.Set, platform api.Platform, opts ...Option) *Virtualizer {
	v := &Virtualizer{
		set:      set,
		platform: platform,
		exKind:   api.RelationNone,
		first:    control.NewFirstCall(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Set returns the virtual CPU set.
func (v *Virtualizer) Set() vcpu.Set { return v.set }

// Close releases both caches. Called at detach, after the detour mechanism
// has removed the redirections.
func (v *Virtualizer) Close() {
	v.legacyMu.Lock()
	v.legacy.Store(nil)
	v.legacyMu.Unlock()

	v.exMu.Lock()
	v.exBuf = nil
	v.exKind = api.RelationNone
	v.exMu.Unlock()

	control.CacheBytes.WithLabelValues("legacy").Set(0)
	control.CacheBytes.WithLabelValues("extended").Set(0)
}

// RegisterProbes exposes cache state through a debug probe registry.
func (v *Virtualizer) RegisterProbes(p *control.Probes) {
	p.Register("vcpu.count", func() any { return v.set.Count() })
	p.Register("vcpu.mask", func() any { return uint64(v.set.Mask()) })
	p.Register("cache.legacy.bytes", func() any {
		if snap := v.legacy.Load(); snap != nil {
			return len(snap.data)
		}
		return 0
	})
	p.Register("cache.extended", func() any {
		v.exMu.Lock()
		defer v.exMu.Unlock()
		return map[string]any{"kind": v.exKind.String(), "bytes": len(v.exBuf)}
	})
}

// observe drives the side observability concerns for one intercepted call.
func (v *Virtualizer) observe(op string) {
	control.CallsTotal.WithLabelValues(op).Inc()
	if v.trace != nil {
		v.trace.Record(op)
	}
	if v.first.Observe(op) {
		log.Printf("[virtualizer] %s called at least once", op)
	}
}
