package validators

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "validators")

	totalActiveStakeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "validators_total_active_stake",
		Help: "Sum of the stakes of all active validators.",
	})
	activeValidatorsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "validators_active_count",
		Help: "The number of active validators.",
	})
	pendingActivationsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "validators_pending_activations",
		Help: "The number of queued validator activations.",
	})
	pendingExitsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "validators_pending_exits",
		Help: "The number of queued validator exits.",
	})
)

// updateMetrics must be called with the set lock held.
func (s *Set) updateMetrics() {
	stake, _ := new(big.Float).SetInt(s.totalActiveStake.ToBig()).Float64()
	totalActiveStakeGauge.Set(stake)
	activeValidatorsGauge.Set(float64(s.activeCount))
	pendingActivationsGauge.Set(float64(s.activations.len()))
	pendingExitsGauge.Set(float64(s.exits.len()))
}
