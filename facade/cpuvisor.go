// File: facade/cpuvisor.go
// Unified facade layer for the cpuvisor library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the Session struct, which assembles the virtualization
// engine behind a single facade: configuration from the environment, the
// virtual CPU set, the Virtualizer over the given platform, observability
// hooks, and installation of the detour redirections. Closing the session
// removes the redirections and releases both topology caches.

package facade

import (
	"log"
	"sync"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/config"
	"github.com/momentics/cpuvisor/control"
	"github.com/momentics/cpuvisor/vcpu"
	"github.com/momentics/cpuvisor/virtualizer"
)

// Session is one topology virtualization session: a single configuration
// for the process lifetime, created at attach and closed at detach.
type Session struct {
	cfg    config.Config
	virt   *virtualizer.Virtualizer
	detour api.Detour
	trace  *control.Trace
	probes *control.Probes

	mu     sync.Mutex
	closed bool
}

// New loads configuration from the environment and starts a session over
// platform. When detour is non-nil its Install hook is driven with the
// virtualized platform; a nil detour leaves interception to the caller.
func New(platform api.Platform, detour api.Detour) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, platform, detour)
}

// NewWithConfig starts a session with an explicit configuration.
func NewWithConfig(cfg config.Config, platform api.Platform, detour api.Detour) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	set, err := vcpu.New(cfg.NumCPUs)
	if err != nil {
		return nil, err
	}

	var opts []virtualizer.Option
	var trace *control.Trace
	if cfg.EnableTrace {
		trace = control.NewTrace(cfg.TraceDepth)
		opts = append(opts, virtualizer.WithTrace(trace))
	}

	virt := virtualizer.New(set, platform, opts...)
	probes := control.NewProbes()
	virt.RegisterProbes(probes)

	if detour != nil {
		if err := detour.Install(virt); err != nil {
			virt.Close()
			return nil, err
		}
	}
	log.Printf("[facade] topology virtualization active: %d virtual CPUs, mask %#x",
		set.Count(), uint64(set.Mask()))

	return &Session{
		cfg:    cfg,
		virt:   virt,
		detour: detour,
		trace:  trace,
		probes: probes,
	}, nil
}

// Virtualizer returns the engine, which itself implements api.Platform.
func (s *Session) Virtualizer() *virtualizer.Virtualizer { return s.virt }

// Trace returns the operation trace, or nil when disabled.
func (s *Session) Trace() *control.Trace { return s.trace }

// Probes returns the debug probe registry for this session.
func (s *Session) Probes() *control.Probes { return s.probes }

// Close removes the detour redirections and releases both caches. It is
// safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.detour != nil {
		err = s.detour.Remove()
	}
	s.virt.Close()
	log.Printf("[facade] topology virtualization detached")
	return err
}
