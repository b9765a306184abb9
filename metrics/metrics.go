package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Version records which build is currently running, one gauge point set to
// 1 per build/version combination.
var Version = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "version",
		Help: "Version information of this binary",
	},
	[]string{"started_at", "tag", "commit", "compiler", "goarch", "goos", "goamd64", "vcs", "vcs_revision", "vcs_time", "vcs_modified"},
)

// FlagLookupHistogram times the end-to-end GetBooleanFlag pipeline
// (package lookup + flag lookup + value read + attribute read),
// repurposed from the teacher's index-lookup histogram for the same
// "mmap-backed keyed lookup" shape.
var FlagLookupHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "flag_lookup_latency_histogram",
		Help:    "aconfig flag lookup latency",
		Buckets: prometheus.ExponentialBuckets(0.000001, 10, 10),
	},
	[]string{"container", "found"},
)

// MappingCacheResult counts first-access mapping outcomes per container:
// hit (already mapped), miss (mapped for the first time), or fail (mapping
// attempt returned an error and was left unmapped for retry, per §7).
var MappingCacheResult = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mapping_cache_result",
		Help: "aconfig mapping cache first-access outcomes by container",
	},
	[]string{"container", "result"},
)
