// File: virtualizer/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The query dispatch surface: one method per intercepted entry point,
// implementing api.Platform over the wrapped real platform. No filtering
// logic lives here; everything is delegated to the mask engine and the
// cache builders so that no two queries can disagree about the virtual
// topology.

package virtualizer

import (
	"fmt"

	"github.com/momentics/cpuvisor/api"
	"github.com/momentics/cpuvisor/control"
)

var _ api.Platform = (*Virtualizer)(nil)

// GetSystemInfo reports the system information with the processor count
// clamped and the active-processor mask reduced to the virtual set.
func (v *Virtualizer) GetSystemInfo(info *api.SystemInfo) {
	v.observe("GetSystemInfo")
	v.platform.GetSystemInfo(info)
	info.NumberOfProcessors = v.set.ClampCount(info.NumberOfProcessors)
	info.ActiveProcessorMask = v.set.MaskAffinity(info.ActiveProcessorMask)
}

// GetNativeSystemInfo is the native-architecture variant of GetSystemInfo.
func (v *Virtualizer) GetNativeSystemInfo(info *api.SystemInfo) {
	v.observe("GetNativeSystemInfo")
	v.platform.GetNativeSystemInfo(info)
	info.NumberOfProcessors = v.set.ClampCount(info.NumberOfProcessors)
	info.ActiveProcessorMask = v.set.MaskAffinity(info.ActiveProcessorMask)
}

// GetProcessAffinityMask reduces both reported masks to the virtual set.
func (v *Virtualizer) GetProcessAffinityMask(process api.Handle) (api.Affinity, api.Affinity, error) {
	v.observe("GetProcessAffinityMask")
	processMask, systemMask, err := v.platform.GetProcessAffinityMask(process)
	if err != nil {
		return 0, 0, err
	}
	return v.set.MaskAffinity(processMask), v.set.MaskAffinity(systemMask), nil
}

// SetProcessAffinityMask reduces the requested mask before applying it.
func (v *Virtualizer) SetProcessAffinityMask(process api.Handle, mask api.Affinity) error {
	v.observe("SetProcessAffinityMask")
	return v.platform.SetProcessAffinityMask(process, v.set.MaskAffinity(mask))
}

// SetThreadAffinityMask reduces the requested mask before applying it and
// the previous mask before returning it.
func (v *Virtualizer) SetThreadAffinityMask(thread api.Handle, mask api.Affinity) (api.Affinity, error) {
	v.observe("SetThreadAffinityMask")
	previous, err := v.platform.SetThreadAffinityMask(thread, v.set.MaskAffinity(mask))
	if err != nil {
		return 0, err
	}
	return v.set.MaskAffinity(previous), nil
}

// GetProcessGroupAffinity is forwarded untouched; group topology is already
// collapsed to a single group by the extended cache filter, so the real
// answer cannot name a group the caller has not been shown.
func (v *Virtualizer) GetProcessGroupAffinity(process api.Handle, count *uint16, groups []uint16) error {
	v.observe("GetProcessGroupAffinity")
	return v.platform.GetProcessGroupAffinity(process, count, groups)
}

// GetThreadGroupAffinity is forwarded untouched.
func (v *Virtualizer) GetThreadGroupAffinity(thread api.Handle, affinity *api.GroupAffinity) error {
	v.observe("GetThreadGroupAffinity")
	return v.platform.GetThreadGroupAffinity(thread, affinity)
}

// SetThreadGroupAffinity is forwarded untouched.
func (v *Virtualizer) SetThreadGroupAffinity(thread api.Handle, affinity *api.GroupAffinity, previous *api.GroupAffinity) error {
	v.observe("SetThreadGroupAffinity")
	return v.platform.SetThreadGroupAffinity(thread, affinity, previous)
}

// SetThreadIdealProcessor rejects indices outside the virtual set before
// the platform is consulted; a successful result is folded back into the
// set.
func (v *Virtualizer) SetThreadIdealProcessor(thread api.Handle, processor uint32) (uint32, error) {
	v.observe("SetThreadIdealProcessor")
	if !v.set.AllowsIdeal(processor) {
		control.IdealRejectionsTotal.Inc()
		return 0, fmt.Errorf("ideal processor %d outside virtual set: %w",
			processor, api.ErrInvalidArgument)
	}
	previous, err := v.platform.SetThreadIdealProcessor(thread, processor)
	if err != nil {
		return previous, err
	}
	return v.set.ReduceIdeal(previous), nil
}

// SetThreadIdealProcessorEx is forwarded untouched.
func (v *Virtualizer) SetThreadIdealProcessorEx(thread api.Handle, ideal *api.ProcessorNumber, previous *api.ProcessorNumber) error {
	v.observe("SetThreadIdealProcessorEx")
	return v.platform.SetThreadIdealProcessorEx(thread, ideal, previous)
}

// GetLogicalProcessorInformation serves the filtered legacy topology using
// the platform's two-phase size/fill protocol. A nil returnedLength is
// invalid usage and is forwarded to the real routine so its own validation
// error is what the caller observes.
func (v *Virtualizer) GetLogicalProcessorInformation(buf []byte, returnedLength *uint32) error {
	v.observe("GetLogicalProcessorInformation")
	data, err := v.cachedLegacy()
	if err != nil {
		return err
	}
	if returnedLength == nil {
		return v.platform.GetLogicalProcessorInformation(nil, nil)
	}
	need := uint32(len(data))
	if buf == nil || uint32(len(buf)) < need || *returnedLength < need {
		*returnedLength = need
		return api.ErrInsufficientBuffer
	}
	*returnedLength = need
	copy(buf, data)
	return nil
}

// GetLogicalProcessorInformationEx serves the filtered extended topology
// for the requested relationship kind, rebuilding the cache only when the
// kind changes. The lock spans the kind check and the copy-out.
func (v *Virtualizer) GetLogicalProcessorInformationEx(kind api.RelationshipKind, buf []byte, returnedLength *uint32) error {
	v.observe("GetLogicalProcessorInformationEx")
	if returnedLength == nil {
		return v.platform.GetLogicalProcessorInformationEx(kind, buf, nil)
	}

	v.exMu.Lock()
	defer v.exMu.Unlock()
	data, err := v.cachedExtended(kind)
	if err != nil {
		return err
	}
	need := uint32(len(data))
	if buf == nil || uint32(len(buf)) < need || *returnedLength < need {
		*returnedLength = need
		return api.ErrInsufficientBuffer
	}
	*returnedLength = need
	copy(buf, data)
	return nil
}
