// File: platform/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package platform binds api.Platform to the real operating system.
//
// On Windows the binding resolves the original kernel routines lazily and
// forwards every call unchanged, translating only the insufficient-buffer
// failure onto api.ErrInsufficientBuffer so the engine can recognize the
// size probe. On other platforms New returns a stub whose topology and
// affinity operations fail with api.ErrNotSupported.
package platform
