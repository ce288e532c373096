//go:build windows
// +build windows

// File: platform/platform_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows implementation of api.Platform over kernel32.

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/cpuvisor/api"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetSystemInfo                     = modkernel32.NewProc("GetSystemInfo")
	procGetNativeSystemInfo               = modkernel32.NewProc("GetNativeSystemInfo")
	procGetProcessAffinityMask            = modkernel32.NewProc("GetProcessAffinityMask")
	procSetProcessAffinityMask            = modkernel32.NewProc("SetProcessAffinityMask")
	procSetThreadAffinityMask             = modkernel32.NewProc("SetThreadAffinityMask")
	procGetProcessGroupAffinity           = modkernel32.NewProc("GetProcessGroupAffinity")
	procGetThreadGroupAffinity            = modkernel32.NewProc("GetThreadGroupAffinity")
	procSetThreadGroupAffinity            = modkernel32.NewProc("SetThreadGroupAffinity")
	procSetThreadIdealProcessor           = modkernel32.NewProc("SetThreadIdealProcessor")
	procSetThreadIdealProcessorEx         = modkernel32.NewProc("SetThreadIdealProcessorEx")
	procGetLogicalProcessorInformation    = modkernel32.NewProc("GetLogicalProcessorInformation")
	procGetLogicalProcessorInformationEx  = modkernel32.NewProc("GetLogicalProcessorInformationEx")
)

// systemInfo mirrors the native SYSTEM_INFO layout.
type systemInfo struct {
	processorArchitecture     uint16
	reserved                  uint16
	pageSize                  uint32
	minimumApplicationAddress uintptr
	maximumApplicationAddress uintptr
	activeProcessorMask       uintptr
	numberOfProcessors        uint32
	processorType             uint32
	allocationGranularity     uint32
	processorLevel            uint16
	processorRevision         uint16
}

// groupAffinity mirrors the native GROUP_AFFINITY layout.
type groupAffinity struct {
	mask     uintptr
	group    uint16
	reserved [3]uint16
}

type kernelPlatform struct{}

// New returns the real platform binding.
func New() api.Platform { return kernelPlatform{} }

// callErr translates the native insufficient-buffer failure; everything
// else is propagated verbatim.
func callErr(e error) error {
	if errno, ok := e.(windows.Errno); ok && errno == windows.ERROR_INSUFFICIENT_BUFFER {
		return api.ErrInsufficientBuffer
	}
	return e
}

func (kernelPlatform) GetSystemInfo(info *api.SystemInfo) {
	var si systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	copySystemInfo(info, &si)
}

func (kernelPlatform) GetNativeSystemInfo(info *api.SystemInfo) {
	var si systemInfo
	procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	copySystemInfo(info, &si)
}

func copySystemInfo(dst *api.SystemInfo, src *systemInfo) {
	dst.ProcessorArchitecture = src.processorArchitecture
	dst.PageSize = src.pageSize
	dst.MinimumApplicationAddress = src.minimumApplicationAddress
	dst.MaximumApplicationAddress = src.maximumApplicationAddress
	dst.ActiveProcessorMask = api.Affinity(src.activeProcessorMask)
	dst.NumberOfProcessors = src.numberOfProcessors
	dst.ProcessorType = src.processorType
	dst.AllocationGranularity = src.allocationGranularity
	dst.ProcessorLevel = src.processorLevel
	dst.ProcessorRevision = src.processorRevision
}

func (kernelPlatform) GetProcessAffinityMask(process api.Handle) (api.Affinity, api.Affinity, error) {
	var processMask, systemMask uintptr
	ret, _, err := procGetProcessAffinityMask.Call(uintptr(process),
		uintptr(unsafe.Pointer(&processMask)), uintptr(unsafe.Pointer(&systemMask)))
	if ret == 0 {
		return 0, 0, callErr(err)
	}
	return api.Affinity(processMask), api.Affinity(systemMask), nil
}

func (kernelPlatform) SetProcessAffinityMask(process api.Handle, mask api.Affinity) error {
	ret, _, err := procSetProcessAffinityMask.Call(uintptr(process), uintptr(mask))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func (kernelPlatform) SetThreadAffinityMask(thread api.Handle, mask api.Affinity) (api.Affinity, error) {
	ret, _, err := procSetThreadAffinityMask.Call(uintptr(thread), uintptr(mask))
	if ret == 0 {
		return 0, callErr(err)
	}
	return api.Affinity(ret), nil
}

func (kernelPlatform) GetProcessGroupAffinity(process api.Handle, count *uint16, groups []uint16) error {
	var groupPtr unsafe.Pointer
	if len(groups) > 0 {
		groupPtr = unsafe.Pointer(&groups[0])
	}
	ret, _, err := procGetProcessGroupAffinity.Call(uintptr(process),
		uintptr(unsafe.Pointer(count)), uintptr(groupPtr))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func (kernelPlatform) GetThreadGroupAffinity(thread api.Handle, affinity *api.GroupAffinity) error {
	var ga groupAffinity
	ret, _, err := procGetThreadGroupAffinity.Call(uintptr(thread), uintptr(unsafe.Pointer(&ga)))
	if ret == 0 {
		return callErr(err)
	}
	affinity.Mask = api.Affinity(ga.mask)
	affinity.Group = ga.group
	return nil
}

func (kernelPlatform) SetThreadGroupAffinity(thread api.Handle, affinity *api.GroupAffinity, previous *api.GroupAffinity) error {
	ga := groupAffinity{mask: uintptr(affinity.Mask), group: affinity.Group}
	var prev groupAffinity
	var prevPtr unsafe.Pointer
	if previous != nil {
		prevPtr = unsafe.Pointer(&prev)
	}
	ret, _, err := procSetThreadGroupAffinity.Call(uintptr(thread),
		uintptr(unsafe.Pointer(&ga)), uintptr(prevPtr))
	if ret == 0 {
		return callErr(err)
	}
	if previous != nil {
		previous.Mask = api.Affinity(prev.mask)
		previous.Group = prev.group
	}
	return nil
}

func (kernelPlatform) SetThreadIdealProcessor(thread api.Handle, processor uint32) (uint32, error) {
	ret, _, err := procSetThreadIdealProcessor.Call(uintptr(thread), uintptr(processor))
	if uint32(ret) == ^uint32(0) {
		return ^uint32(0), callErr(err)
	}
	return uint32(ret), nil
}

func (kernelPlatform) SetThreadIdealProcessorEx(thread api.Handle, ideal *api.ProcessorNumber, previous *api.ProcessorNumber) error {
	ret, _, err := procSetThreadIdealProcessorEx.Call(uintptr(thread),
		uintptr(unsafe.Pointer(ideal)), uintptr(unsafe.Pointer(previous)))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func (kernelPlatform) GetLogicalProcessorInformation(buf []byte, returnedLength *uint32) error {
	var bufPtr unsafe.Pointer
	if len(buf) > 0 {
		bufPtr = unsafe.Pointer(&buf[0])
	}
	ret, _, err := procGetLogicalProcessorInformation.Call(uintptr(bufPtr),
		uintptr(unsafe.Pointer(returnedLength)))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func (kernelPlatform) GetLogicalProcessorInformationEx(kind api.RelationshipKind, buf []byte, returnedLength *uint32) error {
	var bufPtr unsafe.Pointer
	if len(buf) > 0 {
		bufPtr = unsafe.Pointer(&buf[0])
	}
	ret, _, err := procGetLogicalProcessorInformationEx.Call(uintptr(kind),
		uintptr(bufPtr), uintptr(unsafe.Pointer(returnedLength)))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}
