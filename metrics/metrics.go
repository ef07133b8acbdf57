// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microgrants",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microgrants",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	awards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microgrants",
			Subsystem: "review",
			Name:      "award_attempts_total",
			Help:      "Award attempts by outcome.",
		},
		[]string{"outcome"},
	)

	shortlistToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microgrants",
			Subsystem: "review",
			Name:      "shortlist_toggles_total",
			Help:      "Shortlist toggles by resulting value.",
		},
		[]string{"shortlisted"},
	)

	aggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "microgrants",
			Subsystem: "review",
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent assembling a grant's applications.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	degradedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microgrants",
			Subsystem: "review",
			Name:      "degraded_lookups_total",
			Help:      "References that could not be resolved during aggregation.",
		},
		[]string{"kind"},
	)

	contactCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microgrants",
			Subsystem: "contacts",
			Name:      "cache_lookups_total",
			Help:      "Contact cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, awards, shortlistToggles, aggregationDuration, degradedRecords, contactCache)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordAward counts an award attempt; outcome is "awarded" or a refusal reason.
func RecordAward(outcome string) {
	awards.WithLabelValues(outcome).Inc()
}

func RecordShortlistToggle(shortlisted bool) {
	shortlistToggles.WithLabelValues(strconv.FormatBool(shortlisted)).Inc()
}

func ObserveAggregation(d time.Duration) {
	aggregationDuration.Observe(d.Seconds())
}

// RecordDegraded counts unresolved references of one kind (profile, lab, contact, answers, question).
func RecordDegraded(kind string, n int) {
	if n <= 0 {
		return
	}
	degradedRecords.WithLabelValues(kind).Add(float64(n))
}

// RecordContactCache counts cache hits and misses for one resolve call.
func RecordContactCache(hits, misses int) {
	if hits > 0 {
		contactCache.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		contactCache.WithLabelValues("miss").Add(float64(misses))
	}
}
