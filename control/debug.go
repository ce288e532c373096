// File: control/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// First-call diagnostic latches and a debug probe registry for internal
// inspection of the engine's caches and configuration.

package control

import "sync"

// FirstCall latches the first occurrence of each named operation, so the
// engine can log "called at least once" diagnostics without flooding.
type FirstCall struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewFirstCall creates an empty latch set.
func NewFirstCall() *FirstCall {
	return &FirstCall{seen: make(map[string]bool)}
}

// Observe reports whether this is the first time op has been seen.
func (f *FirstCall) Observe(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[op] {
		return false
	}
	f.seen[op] = true
	return true
}

// Probes holds named probe functions for state inspection.
type Probes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewProbes creates a probe registry.
func NewProbes() *Probes {
	return &Probes{probes: make(map[string]func() any)}
}

// Register inserts a named debug hook, replacing any previous one.
func (p *Probes) Register(name string, fn func() any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes[name] = fn
}

// Dump returns the output of all probes.
func (p *Probes) Dump() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]any, len(p.probes))
	for name, fn := range p.probes {
		out[name] = fn()
	}
	return out
}
