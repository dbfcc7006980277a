package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "engine")

	haltedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_halted",
		Help: "1 when consensus processing halted on a consistency fault.",
	})
	currentSlotGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_current_slot",
		Help: "The last slot reported by the clock.",
	})
	epochTransitionsCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_epoch_transitions_total",
		Help: "The number of epoch transitions that advanced the validator set.",
	})
	persistFailuresCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_persist_failures_total",
		Help: "The number of failed writes to the storage collaborator.",
	})
)
