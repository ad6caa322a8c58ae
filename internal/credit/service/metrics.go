package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	consumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styloren_credits_consumed_total",
		Help: "Credits debited across all users.",
	})
	gateDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styloren_credit_gate_denials_total",
		Help: "Consume attempts rejected because no eligible batch existed.",
	})
	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styloren_credit_consume_conflicts_total",
		Help: "Conditional increments that lost to a concurrent update.",
	})
	purchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "styloren_credit_batches_purchased_total",
		Help: "Batches created, by plan.",
	}, []string{"plan"})
)
