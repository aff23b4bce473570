package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkhub_bookings_total",
			Help: "Total booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	releasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parkhub_releases_total",
			Help: "Total released reservations",
		},
	)

	occupiedSpots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkhub_occupied_spots",
			Help: "Spots currently occupied across all lots",
		},
	)
)

func BookingSucceeded() {
	bookingsTotal.WithLabelValues("success").Inc()
	occupiedSpots.Inc()
}

func BookingRejected(outcome string) {
	bookingsTotal.WithLabelValues(outcome).Inc()
}

func SpotReleased() {
	releasesTotal.Inc()
	occupiedSpots.Dec()
}
