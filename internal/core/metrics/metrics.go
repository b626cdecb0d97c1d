// Package metrics exposes Prometheus instrumentation for the code API.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// unmatchedLabel is the template label for scans no template resolved.
const unmatchedLabel = "none"

var (
	grpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codematch_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	grpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codematch_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method"},
	)

	grpcRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codematch_grpc_requests_in_flight",
			Help: "Current number of gRPC requests being processed",
		},
	)

	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codematch_scans_total",
			Help: "Scanned codes by the first template that resolved them",
		},
		[]string{"template"},
	)

	codesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codematch_codes_created_total",
			Help: "Codes rendered by CreateCode",
		},
		[]string{"template", "status"},
	)
)

// Interceptor records request count, latency and in-flight gauge per method.
func Interceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		grpcRequestsInFlight.Inc()
		defer grpcRequestsInFlight.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)

		grpcRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// RecordScan counts a scan under its first matching template, or "none".
func RecordScan(templateID string) {
	if templateID == "" {
		templateID = unmatchedLabel
	}
	scansTotal.WithLabelValues(templateID).Inc()
}

// RecordCreateCode counts a CreateCode call.
func RecordCreateCode(templateID string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	codesCreatedTotal.WithLabelValues(templateID, result).Inc()
}
