package slashing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "slashing")

	slashingsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slashing_applied_total",
		Help: "The number of applied slashings by offense kind.",
	}, []string{"kind"})
	evidenceRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slashing_evidence_rejected_total",
		Help: "The number of evidence objects rejected as invalid or duplicate.",
	})
	evidenceQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slashing_evidence_queue_length",
		Help: "The number of evidence objects waiting to be applied.",
	})
	evidenceQueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slashing_evidence_queue_dropped_total",
		Help: "The number of evidence objects refused because the queue was full.",
	})
)
