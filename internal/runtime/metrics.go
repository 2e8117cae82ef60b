package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soltab",
		Name:      "commands_total",
		Help:      "Commands executed, by command name and outcome.",
	}, []string{"command", "status"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soltab",
		Name:      "command_duration_seconds",
		Help:      "Command execution time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"command"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soltab",
		Name:      "events_total",
		Help:      "Events emitted by committed commands.",
	}, []string{"event"})
)
