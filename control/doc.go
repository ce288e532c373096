// Package control
// Author: momentics <momentics@gmail.com>
//
// Observability layer for the topology virtualization engine: prometheus
// counters for intercepted calls and cache activity, a bounded trace of
// recent intercepted operations, first-call diagnostic latches and a debug
// probe registry. Nothing here affects engine correctness; every hook is a
// side concern the engine drives on its way through.
package control
