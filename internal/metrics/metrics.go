package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bughunt_active_sessions",
		Help: "Number of live room websocket sessions.",
	})

	RoundsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bughunt_rounds_started_total",
		Help: "Total rounds started across all rooms.",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bughunt_submissions_total",
		Help: "Solution submissions by verdict.",
	}, []string{"verdict"})

	RoomsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bughunt_rooms_finalized_total",
		Help: "Rooms finalized (scored and closed).",
	})

	RoomsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bughunt_rooms_swept_total",
		Help: "Abandoned rooms removed by garbage collection.",
	})
)
