// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values for the cpuvisor library.

package api

import "fmt"

// Errors shared across the library. Platform bindings translate the native
// failure codes onto these values so that the engine and its callers can
// test them with errors.Is; any other platform failure is propagated
// verbatim.
var (
	// ErrInsufficientBuffer: the caller's buffer is absent or smaller than
	// the required size, which has been reported through the length pointer.
	ErrInsufficientBuffer = fmt.Errorf("buffer too small for topology data")

	// ErrInvalidArgument: the request is malformed or out of range.
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrNotSupported: the operation has no implementation on this platform.
	ErrNotSupported = fmt.Errorf("operation not supported on this platform")

	// ErrNoData: the platform reported success on a size probe, meaning it
	// has no topology data to return.
	ErrNoData = fmt.Errorf("platform reported no topology data")
)
