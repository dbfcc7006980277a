package election

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "election")

	proposerCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "election_proposer_cache_hit",
		Help: "The number of proposer requests served from the cache.",
	})
	proposerCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "election_proposer_cache_miss",
		Help: "The number of proposer requests that ran an election.",
	})
	invalidProducerCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "election_invalid_producer_total",
		Help: "The number of headers rejected for an unelected producer.",
	})
)
