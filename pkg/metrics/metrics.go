// Package metrics Prometheus collectors for the HTTP layer and attendance writes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests requests served, by route and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siakad",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status"})

	// HTTPDuration request latency, by route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "siakad",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AttendanceRecordsSaved records upserted, by scope
	AttendanceRecordsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siakad",
		Name:      "attendance_records_saved_total",
		Help:      "Attendance records written by batch saves.",
	}, []string{"scope"})

	// AttendanceBatchFailures failed batch saves, by reason
	AttendanceBatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siakad",
		Name:      "attendance_batch_failures_total",
		Help:      "Rejected or failed attendance batch saves.",
	}, []string{"reason"})

	// RosterCache roster cache lookups, by result (hit|miss|error)
	RosterCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siakad",
		Name:      "roster_cache_lookups_total",
		Help:      "Roster cache lookups.",
	}, []string{"result"})
)
