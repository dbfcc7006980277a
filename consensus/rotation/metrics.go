package rotation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "rotation")

	currentEpochGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rotation_current_epoch",
		Help: "The epoch of the last processed transition.",
	})
	activatedCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_activated_total",
		Help: "The number of validators moved to active at epoch transitions.",
	})
	exitedCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_exited_total",
		Help: "The number of validators moved to exited at epoch transitions.",
	})
	jailedCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotation_jailed_total",
		Help: "The number of validators jailed at epoch transitions.",
	})
	deferredActivations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rotation_deferred_activations",
		Help: "The number of due activations left queued by the validator cap.",
	})
)
