//go:build !windows
// +build !windows

// File: platform/platform_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub binding for platforms without the topology entry points. System
// information is filled from the Go runtime; everything else fails with
// api.ErrNotSupported. Tests and portable consumers use fake.New instead.

package platform

import (
	"runtime"

	"github.com/momentics/cpuvisor/api"
)

type stubPlatform struct{}

// New returns the stub platform binding.
func New() api.Platform { return stubPlatform{} }

func (stubPlatform) GetSystemInfo(info *api.SystemInfo) {
	n := uint32(runtime.NumCPU())
	if n > api.MaxVirtualCPUs {
		n = api.MaxVirtualCPUs
	}
	info.NumberOfProcessors = n
	if n == api.MaxVirtualCPUs {
		info.ActiveProcessorMask = ^api.Affinity(0)
	} else {
		info.ActiveProcessorMask = api.Affinity(1)<<n - 1
	}
}

func (s stubPlatform) GetNativeSystemInfo(info *api.SystemInfo) {
	s.GetSystemInfo(info)
}

func (stubPlatform) GetProcessAffinityMask(api.Handle) (api.Affinity, api.Affinity, error) {
	return 0, 0, api.ErrNotSupported
}

func (stubPlatform) SetProcessAffinityMask(api.Handle, api.Affinity) error {
	return api.ErrNotSupported
}

func (stubPlatform) SetThreadAffinityMask(api.Handle, api.Affinity) (api.Affinity, error) {
	return 0, api.ErrNotSupported
}

func (stubPlatform) GetProcessGroupAffinity(api.Handle, *uint16, []uint16) error {
	return api.ErrNotSupported
}

func (stubPlatform) GetThreadGroupAffinity(api.Handle, *api.GroupAffinity) error {
	return api.ErrNotSupported
}

func (stubPlatform) SetThreadGroupAffinity(api.Handle, *api.GroupAffinity, *api.GroupAffinity) error {
	return api.ErrNotSupported
}

func (stubPlatform) SetThreadIdealProcessor(api.Handle, uint32) (uint32, error) {
	return 0, api.ErrNotSupported
}

func (stubPlatform) SetThreadIdealProcessorEx(api.Handle, *api.ProcessorNumber, *api.ProcessorNumber) error {
	return api.ErrNotSupported
}

func (stubPlatform) GetLogicalProcessorInformation([]byte, *uint32) error {
	return api.ErrNotSupported
}

func (stubPlatform) GetLogicalProcessorInformationEx(api.RelationshipKind, []byte, *uint32) error {
	return api.ErrNotSupported
}
