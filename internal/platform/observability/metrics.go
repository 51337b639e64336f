package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fallback reasons recorded when a source has no entry for a day.
const (
	FallbackMassLookback = "mass_lookback"
	FallbackMassMissing  = "mass_missing"
	FallbackPubDefault   = "pub_default"
	FallbackRigDefault   = "rig_default"
	FallbackSpeciesPct   = "species_percent_default"
)

var (
	SummariesAssembled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labdaily_summaries_assembled_total",
		Help: "The total number of daily summary rows assembled",
	}, []string{"animal"})

	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labdaily_fallbacks_total",
		Help: "Total number of default substitutions applied for missing records",
	}, []string{"reason"})

	SourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "labdaily_source_fetch_duration_seconds",
		Help:    "Duration of record source queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	CacheRowsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labdaily_cache_rows_served_total",
		Help: "Summary rows served by origin during lazy load",
	}, []string{"origin"})

	CacheRefetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labdaily_cache_refetches_total",
		Help: "Total number of forced full refetches of the summary cache",
	})
)
