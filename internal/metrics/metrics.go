// Package metrics holds the prometheus collectors of the lookup engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerOrExisting registers coll with the default registry, returning the
// already registered collector when an identical one exists.
func registerOrExisting(coll prometheus.Collector) prometheus.Collector {
	if err := prometheus.DefaultRegisterer.Register(coll); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return coll
}

var (
	componentLookups = registerOrExisting(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvelookup",
			Name:      "component_lookups_total",
			Help:      "Component lookups by outcome.",
		},
		[]string{"outcome"},
	)).(*prometheus.CounterVec)

	lookupDuration = registerOrExisting(prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cvelookup",
			Name:      "component_lookup_seconds",
			Help:      "Time spent resolving one component end to end.",
		},
	)).(prometheus.Histogram)

	cveMatches = registerOrExisting(prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvelookup",
			Name:      "cve_matches_total",
			Help:      "CVE ids produced per matcher.",
		},
		[]string{"matcher"},
	)).(*prometheus.CounterVec)

	storeErrors = registerOrExisting(prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cvelookup",
			Name:      "store_errors_total",
			Help:      "Reference store failures that aborted a batch.",
		},
	)).(prometheus.Counter)
)

// ObserveLookup records the outcome and duration of one component lookup.
func ObserveLookup(outcome string, seconds float64) {
	componentLookups.WithLabelValues(outcome).Inc()
	lookupDuration.Observe(seconds)
}

// AddMatches counts ids produced by matcher.
func AddMatches(matcher string, n int) {
	cveMatches.WithLabelValues(matcher).Add(float64(n))
}

// StoreError counts a reference store failure.
func StoreError() {
	storeErrors.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
