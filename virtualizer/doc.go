// File: virtualizer/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package virtualizer implements the topology virtualization engine.
//
// A Virtualizer wraps a real api.Platform and implements api.Platform
// itself, so a detour mechanism can redirect the process's topology entry
// points straight onto it. Every affinity-shaped value entering or leaving
// the engine passes through the virtual CPU set's mask arithmetic; the two
// topology-listing queries are served from filtered caches that consult the
// real platform exactly once per cache miss.
package virtualizer
