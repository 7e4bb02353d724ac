// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus instrumentation for the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts outbound provider API calls by method, path
	// template and outcome (ok, error, timeout).
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetgate_provider_requests_total",
		Help: "Outbound provider API requests by outcome.",
	}, []string{"method", "path", "outcome"})

	// TokenExchanges counts provider token exchanges by outcome.
	TokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetgate_token_exchanges_total",
		Help: "Provider OAuth token exchanges by outcome.",
	}, []string{"outcome"})

	// WebhookEvents counts webhook deliveries by event type and verification
	// mode (verified, unverified, rejected).
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetgate_webhook_events_total",
		Help: "Webhook deliveries by event and verification mode.",
	}, []string{"event", "verification"})

	// LiveResolutions counts live-status resolutions by the layer that
	// answered (db, suppressed, fixed, own_live, account_scan, none).
	LiveResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetgate_live_resolutions_total",
		Help: "Live meeting resolutions by answering source.",
	}, []string{"source"})
)
