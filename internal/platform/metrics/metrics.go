// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus instrumentation for the Orvia API.

It defines HTTP-level counters plus a small set of domain counters that make
the interesting failure modes visible (store load degradation, mail delivery
failures, OTP lock-outs). All collectors register on the default registry and
are served by [Handler] under /metrics.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # HTTP Metrics

var (
	// HTTPRequestsTotal counts finished requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_http_requests_total",
		Help: "Total number of processed HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orvia_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// # Durable Store Metrics

var (
	// StoreLoadFailures counts startup loads that degraded to an empty document.
	// A non-zero value after a restart means prior state was silently dropped.
	StoreLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orvia_store_load_failures_total",
		Help: "Store documents that failed to load and were replaced by empty state",
	})

	// StorePersistsTotal counts full-document writes by result.
	StorePersistsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_store_persists_total",
		Help: "Full-state document writes",
	}, []string{"result"}) // result: ok|error
)

// # Domain Metrics

var (
	// OTPIssuedTotal counts issued one-time codes by mode.
	OTPIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_otp_issued_total",
		Help: "One-time codes issued",
	}, []string{"mode"}) // mode: login|signup

	// OTPVerificationsTotal counts verification attempts by outcome.
	OTPVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_otp_verifications_total",
		Help: "One-time code verification attempts",
	}, []string{"result"}) // result: ok|mismatch|locked|expired|missing

	// MailDeliveriesTotal counts hand-offs to the mail collaborator by result.
	MailDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_mail_deliveries_total",
		Help: "Outbound mail delivery attempts",
	}, []string{"result"}) // result: ok|error

	// OrdersCreatedTotal counts successfully placed orders.
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orvia_orders_created_total",
		Help: "Orders created",
	})

	// OrderStatusUpdatesTotal counts administrative status changes by new status.
	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orvia_order_status_updates_total",
		Help: "Administrative order status updates",
	}, []string{"status"})
)

// Handler returns the /metrics endpoint handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
