package forkchoice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "forkchoice")

	headHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forkchoice_head_height",
			Help: "The height of the current head.",
		},
	)
	finalizedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forkchoice_finalized_height",
			Help: "The height of the latest finalized block.",
		},
	)
	nodeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forkchoice_node_count",
			Help: "The number of nodes in the block tree.",
		},
	)
	orphanCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forkchoice_orphan_count",
			Help: "The number of buffered blocks waiting for their parent.",
		},
	)
	headChangesCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkchoice_head_changed_count",
			Help: "The number of times head changes.",
		},
	)
	processedBlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkchoice_block_processed_count",
			Help: "The number of headers handed to fork choice.",
		},
	)
	rejectedBlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkchoice_block_rejected_count",
			Help: "The number of headers rejected by fork choice.",
		},
	)
	evictedOrphanCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkchoice_orphan_evicted_count",
			Help: "The number of buffered blocks evicted from the orphan pool.",
		},
	)
	prunedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forkchoice_pruned_count",
			Help: "The number of non-canonical nodes pruned after finalization.",
		},
	)
)
