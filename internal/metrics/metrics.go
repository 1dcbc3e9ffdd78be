// Package metrics exposes Prometheus counters for ledger and settlement
// activity. Every Observe/Inc helper is safe to call before Init.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "splitledger_"

	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	settlementsTotal   *prometheus.CounterVec
	settlementLatency  *prometheus.HistogramVec
	settlementAttempts prometheus.Counter
	settledAmount      prometheus.Counter

	balanceUpdatesTotal *prometheus.CounterVec
	edgesSimplified     prometheus.Counter
)

// OpenEdgeCounter reports how many balance edges are currently positive.
type OpenEdgeCounter func(ctx context.Context) (int, error)

// Init registers the collectors with the default registry. openEdges may be
// nil; when set it backs a gauge evaluated on every scrape.
func Init(openEdges OpenEdgeCounter) {
	registerOnce.Do(func() {
		settlementsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlements_total",
				Help: "Total settlement requests by result",
			},
			[]string{"result"},
		)
		settlementLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_latency_seconds",
				Help:    "Settlement latency in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		settlementAttempts = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_attempts_total",
				Help: "Total settlement transaction attempts",
			},
		)
		settledAmount = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settled_amount_total",
				Help: "Sum of completed settlement amounts",
			},
		)
		balanceUpdatesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "balance_updates_total",
				Help: "Total ledger mutations by operation and result",
			},
			[]string{"operation", "result"},
		)
		edgesSimplified = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "edges_simplified_total",
				Help: "Total dust edges removed by simplification",
			},
		)

		prometheus.MustRegister(
			settlementsTotal,
			settlementLatency,
			settlementAttempts,
			settledAmount,
			balanceUpdatesTotal,
			edgesSimplified,
		)

		if openEdges != nil {
			registerEdgeGauge(openEdges)
		}
	})
}

func registerEdgeGauge(openEdges OpenEdgeCounter) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "open_edges",
			Help: "Balance edges with a positive amount",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			n, err := openEdges(ctx)
			if err != nil {
				slog.Warn("metrics query failed", "metric", "open_edges", "error", err)
				return 0
			}
			return float64(n)
		},
	))
}

// ObserveSettlement records a settlement outcome and its duration.
func ObserveSettlement(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if settlementsTotal != nil {
		settlementsTotal.WithLabelValues(result).Inc()
	}
	if settlementLatency != nil {
		settlementLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncSettlementAttempt counts one settlement transaction attempt.
func IncSettlementAttempt() {
	if settlementAttempts != nil {
		settlementAttempts.Inc()
	}
}

// AddSettledAmount adds a completed settlement's amount.
func AddSettledAmount(amount float64) {
	if amount <= 0 {
		return
	}
	if settledAmount != nil {
		settledAmount.Add(amount)
	}
}

// IncBalanceUpdate counts a ledger mutation.
func IncBalanceUpdate(operation, result string) {
	if operation == "" {
		operation = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if balanceUpdatesTotal != nil {
		balanceUpdatesTotal.WithLabelValues(operation, result).Inc()
	}
}

// AddEdgesSimplified adds removed dust edges.
func AddEdgesSimplified(count int) {
	if count <= 0 {
		return
	}
	if edgesSimplified != nil {
		edgesSimplified.Add(float64(count))
	}
}
