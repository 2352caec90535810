package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "sessions_started_total",
		Help:      "Total number of search sessions started, by outcome",
	}, []string{"outcome"})

	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "pages_fetched_total",
		Help:      "Total number of listing pages fetched, by outcome",
	}, []string{"outcome"})

	itemsAccumulatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "items_accumulated_total",
		Help:      "Total number of tokens merged into session accumulations",
	})

	duplicatesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "duplicates_dropped_total",
		Help:      "Total number of tokens discarded because their id was already accumulated",
	})

	suggestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "suggestions_total",
		Help:      "Total number of suggestion lookups, by outcome",
	}, []string{"outcome"})

	pageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nftsearch",
		Subsystem: "search",
		Name:      "page_fetch_duration_seconds",
		Help:      "Duration of listing page fetches",
		Buckets:   prometheus.DefBuckets,
	})
)

// Metric outcome labels
const (
	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeError    = "error"
	outcomeStale    = "stale"
	outcomeNotFound = "not_found"
)
