package booking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "holidaze_booking_submissions_total",
		Help: "Booking submissions by outcome.",
	}, []string{"result"})

	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holidaze_booking_conflicts_total",
		Help: "Submissions rejected client-side because the range overlapped an existing booking.",
	})

	fetchDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holidaze_availability_fetch_degraded_total",
		Help: "Availability fetches that failed and degraded to an empty index (fail-open).",
	})

	droppedRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holidaze_booking_records_dropped_total",
		Help: "Raw booking records discarded during normalization.",
	})
)
