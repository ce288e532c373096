// File: fake/platform.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Synthetic api.Platform for tests and portable examples. The fake serves
// configurable raw topology buffers with the same two-phase size/fill
// protocol as the real platform, and counts calls per operation so tests
// can assert how often the engine consulted it.

package fake

import (
	"sync"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/topology"
)

// Platform is a synthetic platform seeded with a plausible topology.
type Platform struct {
	mu sync.Mutex

	Info     api.SystemInfo
	Legacy   []byte // raw legacy records, all kinds
	Extended []byte // raw extended records, all kinds

	processMask api.Affinity
	systemMask  api.Affinity
	threadMask  api.Affinity
	ideal       uint32
	groupAff    api.GroupAffinity

	failWith error
	calls    map[string]int
}

var _ api.Platform = (*Platform)(nil)

// New builds a fake platform with cpus logical processors arranged as
// two-way SMT cores on a single package, NUMA node, L3 cache domain and
// processor group. cpus is capped at 64.
func New(cpus int) *Platform {
	if cpus < 1 {
		cpus = 1
	}
	if cpus > 64 {
		cpus = 64
	}
	all := api.Affinity(1)<<cpus - 1
	if cpus == 64 {
		all = ^api.Affinity(0)
	}

	var legacy, extended []byte
	for i := 0; i < cpus; i += 2 {
		coreMask := api.Affinity(0b11) << i
		if cpus-i == 1 {
			coreMask = api.Affinity(1) << i
		}
		legacy = topology.AppendLegacy(legacy, coreMask, api.RelationProcessorCore, [16]byte{1})
		extended = topology.AppendProcessor(extended, api.RelationProcessorCore, 1, 0,
			api.GroupAffinity{Mask: coreMask})
	}
	legacy = topology.AppendLegacy(legacy, all, api.RelationNumaNode, [16]byte{})
	legacy = topology.AppendLegacy(legacy, all, api.RelationProcessorPackage, [16]byte{})
	extended = topology.AppendNumaNode(extended, api.RelationNumaNode, 0,
		api.GroupAffinity{Mask: all})
	extended = topology.AppendCache(extended, 3, 16, 64, 32<<20, 0,
		api.GroupAffinity{Mask: all})
	extended = topology.AppendProcessor(extended, api.RelationProcessorPackage, 0, 0,
		api.GroupAffinity{Mask: all})
	extended = topology.AppendGroup(extended, 1, topology.GroupInfo{
		Maximum: uint8(cpus), Active: uint8(cpus), Mask: all,
	})

	return &Platform{
		Info: api.SystemInfo{
			NumberOfProcessors:  uint32(cpus),
			ActiveProcessorMask: all,
			PageSize:            4096,
		},
		Legacy:      legacy,
		Extended:    extended,
		processMask: all,
		systemMask:  all,
		threadMask:  all,
		ideal:       0,
		calls:       make(map[string]int),
	}
}

// Calls returns how many times op has been invoked.
func (p *Platform) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// FailTopologyWith forces both topology queries to fail with err until
// called again with nil.
func (p *Platform) FailTopologyWith(err error) {
	p.mu.Lock()
	p.failWith = err
	p.mu.Unlock()
}

// SetIdeal seeds the thread's current ideal processor.
func (p *Platform) SetIdeal(processor uint32) {
	p.mu.Lock()
	p.ideal = processor
	p.mu.Unlock()
}

func (p *Platform) record(op string) {
	p.calls[op]++
}

func (p *Platform) GetSystemInfo(info *api.SystemInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetSystemInfo")
	*info = p.Info
}

func (p *Platform) GetNativeSystemInfo(info *api.SystemInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetNativeSystemInfo")
	*info = p.Info
}

func (p *Platform) GetProcessAffinityMask(api.Handle) (api.Affinity, api.Affinity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetProcessAffinityMask")
	return p.processMask, p.systemMask, nil
}

func (p *Platform) SetProcessAffinityMask(_ api.Handle, mask api.Affinity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetProcessAffinityMask")
	p.processMask = mask
	return nil
}

func (p *Platform) SetThreadAffinityMask(_ api.Handle, mask api.Affinity) (api.Affinity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetThreadAffinityMask")
	previous := p.threadMask
	p.threadMask = mask
	return previous, nil
}

func (p *Platform) GetProcessGroupAffinity(_ api.Handle, count *uint16, groups []uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetProcessGroupAffinity")
	if count == nil {
		return api.ErrInvalidArgument
	}
	if len(groups) < 1 {
		*count = 1
		return api.ErrInsufficientBuffer
	}
	groups[0] = 0
	*count = 1
	return nil
}

func (p *Platform) GetThreadGroupAffinity(_ api.Handle, affinity *api.GroupAffinity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetThreadGroupAffinity")
	*affinity = api.GroupAffinity{Mask: p.threadMask, Group: p.groupAff.Group}
	return nil
}

func (p *Platform) SetThreadGroupAffinity(_ api.Handle, affinity *api.GroupAffinity, previous *api.GroupAffinity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetThreadGroupAffinity")
	if previous != nil {
		*previous = p.groupAff
	}
	p.groupAff = *affinity
	return nil
}

func (p *Platform) SetThreadIdealProcessor(_ api.Handle, processor uint32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetThreadIdealProcessor")
	previous := p.ideal
	if processor != api.NoPreference {
		p.ideal = processor
	}
	return previous, nil
}

func (p *Platform) SetThreadIdealProcessorEx(_ api.Handle, ideal *api.ProcessorNumber, previous *api.ProcessorNumber) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("SetThreadIdealProcessorEx")
	if previous != nil {
		*previous = api.ProcessorNumber{Number: uint8(p.ideal)}
	}
	if ideal != nil {
		p.ideal = uint32(ideal.Number)
	}
	return nil
}

func (p *Platform) GetLogicalProcessorInformation(buf []byte, returnedLength *uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetLogicalProcessorInformation")
	if p.failWith != nil {
		return p.failWith
	}
	if returnedLength == nil {
		p.record("GetLogicalProcessorInformation/nil-length")
		return api.ErrInvalidArgument
	}
	return serve(p.Legacy, buf, returnedLength)
}

func (p *Platform) GetLogicalProcessorInformationEx(kind api.RelationshipKind, buf []byte, returnedLength *uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("GetLogicalProcessorInformationEx")
	if p.failWith != nil {
		return p.failWith
	}
	if returnedLength == nil {
		p.record("GetLogicalProcessorInformationEx/nil-length")
		return api.ErrInvalidArgument
	}
	return serve(p.selectExtended(kind), buf, returnedLength)
}

// selectExtended returns the records matching kind, or all of them for
// RelationAll, preserving order.
func (p *Platform) selectExtended(kind api.RelationshipKind) []byte {
	if kind == api.RelationAll {
		return p.Extended
	}
	var out []byte
	cur := topology.NewCursor(p.Extended)
	for {
		entry, ok := cur.Next()
		if !ok {
			return out
		}
		if topology.EntryKind(entry) == kind {
			out = append(out, entry...)
		}
	}
}

// serve implements the two-phase size/fill protocol over data.
func serve(data, buf []byte, returnedLength *uint32) error {
	need := uint32(len(data))
	if buf == nil || uint32(len(buf)) < need || *returnedLength < need {
		*returnedLength = need
		return api.ErrInsufficientBuffer
	}
	*returnedLength = need
	copy(buf, data)
	return nil
}
