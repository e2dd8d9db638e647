package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tellor-io/telliot-kadena/internal/logger"
)

var (
	ReportsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reporter_submissions_total",
			Help: "Total values submitted to the oracle",
		})
	ReportsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reporter_submission_errors_total",
			Help: "Submission attempts that failed",
		})
	StakeDeposits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reporter_stake_deposits_total",
			Help: "Stake deposit transactions sent",
		})
	LastReportedPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reporter_last_price",
			Help: "Last price reported, per query tag",
		},
		[]string{"tag"},
	)
	SubmissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reporter_submission_duration_seconds",
			Help:    "Time from fetch to confirmed receipt",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		ReportsSubmitted, ReportsFailed, StakeDeposits,
		LastReportedPrice, SubmissionDuration,
	)
}

// Serve exposes /metrics on addr. Runs until the listener fails.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Info("Metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Metrics server stopped: %v", err)
	}
}
