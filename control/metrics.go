// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus metrics for the virtualization engine.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallsTotal counts intercepted operations by entry point.
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpuvisor_calls_total",
			Help: "Total intercepted topology and affinity calls",
		},
		[]string{"op"},
	)

	// CacheRebuildsTotal counts cache (re)builds by cache kind.
	CacheRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpuvisor_cache_rebuilds_total",
			Help: "Total topology cache builds and rebuilds",
		},
		[]string{"cache"},
	)

	// CacheBuildFailuresTotal counts failed cache builds by cache kind.
	CacheBuildFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpuvisor_cache_build_failures_total",
			Help: "Total topology cache builds that failed upstream",
		},
		[]string{"cache"},
	)

	// EntriesDroppedTotal counts topology records culled during filtering.
	EntriesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpuvisor_entries_dropped_total",
			Help: "Topology records culled for not intersecting the virtual CPU set",
		},
		[]string{"cache"},
	)

	// CacheBytes tracks the current published cache sizes.
	CacheBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cpuvisor_cache_bytes",
			Help: "Byte length of the published filtered topology caches",
		},
		[]string{"cache"},
	)

	// IdealRejectionsTotal counts ideal-processor hints rejected before the
	// platform call.
	IdealRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cpuvisor_ideal_rejections_total",
			Help: "Ideal-processor hints outside the virtual CPU set rejected up front",
		},
	)
)
