package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	IntentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_intents_processed_total",
		Help: "The total number of intent requests processed",
	}, []string{"intent_type", "status"})

	IntentProcessingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "whisperd_intent_processing_seconds",
		Help:    "Time taken to run the full intent pipeline",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // Start at 500ms with 10 buckets doubling in size
	}, []string{"intent_type"})

	OracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_oracle_calls_total",
		Help: "Total oracle calls by capability",
	}, []string{"capability", "status"})

	RateLimitedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whisperd_rate_limited_requests_total",
		Help: "Requests rejected because the oracle call budget was spent",
	})

	PlanExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_plan_executions_total",
		Help: "Execution plan runs by outcome",
	}, []string{"strategy", "status"})

	StepsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_steps_executed_total",
		Help: "Individual plan steps executed by type and outcome",
	}, []string{"step_type", "status"})

	QuoteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "whisperd_quote_latency_seconds",
		Help:    "Latency of cross-chain quote requests",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	QuoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whisperd_quote_failures_total",
		Help: "Cross-chain quote requests that failed",
	})

	RelaySubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_relay_submissions_total",
		Help: "Transactions submitted through the private relay by outcome",
	}, []string{"status"})

	TransactionsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisperd_transactions_sent_total",
		Help: "Transactions dispatched by chain",
	}, []string{"chain_id"})

	GasPrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "whisperd_gas_price_gwei",
		Help: "Last observed gas price in gwei",
	}, []string{"chain_id"})

	ActiveExecutions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whisperd_active_executions",
		Help: "Number of plans currently executing",
	})
)
