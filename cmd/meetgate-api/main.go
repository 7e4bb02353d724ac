// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package main is the meeting gateway API: a multi-tenant bridge between
// marketplace storefronts and the Zoom provider, serving settings, meeting
// lifecycle, live status, join tokens and webhook ingestion.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/handlers"
	"github.com/storely/meetgate/internal/infrastructure/authgate"
	"github.com/storely/meetgate/internal/infrastructure/zoom"
	"github.com/storely/meetgate/internal/infrastructure/zoom/api"
	"github.com/storely/meetgate/internal/infrastructure/zoom/webhook"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/service"
	"github.com/storely/meetgate/pkg/cache"
)

// settingsCacheTTL is how long a tenant settings read is served from memory.
const settingsCacheTTL = 5 * time.Minute

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(env, &gracefulCloseWG)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		GlobalAdminUsernames:   env.AdminUsernames,
		FallbackSettings:       env.FallbackSettings,
		EndedSuppressionWindow: env.EndedSuppressionWindow,
	}

	settingsCache := cache.NewTTLCache[*models.TenantSettings](settingsCacheTTL, 1024)
	settingsService := service.NewSettingsService(repos.Settings, settingsCache, serviceConfig)

	// The broker reads credentials through the settings service, and the
	// settings service invalidates broker tokens on credential changes.
	broker := zoom.NewBroker(settingsService)
	settingsService.Broker = broker

	provider := zoom.NewProvider(api.NewClient(broker, api.Config{}))

	liveStatusService := service.NewLiveStatusService(settingsService, repos.Status, provider, serviceConfig)
	meetingService := service.NewMeetingService(settingsService, repos.Status, provider)
	signatureService := service.NewSignatureService(settingsService)
	webhookService := service.NewWebhookService(repos.Settings, repos.Status, provider, webhook.NewValidator())

	gate := authgate.NewHeaderGate()

	// Initialize handlers
	router := newRouter(gatewayHandlers{
		Settings: handlers.NewSettingsHandlers(settingsService, gate),
		Meetings: handlers.NewMeetingHandlers(settingsService, meetingService, liveStatusService, signatureService, gate),
		Webhooks: handlers.NewWebhookHandlers(webhookService),
	}, natsReady(natsConn))

	httpServer := setupHTTPServer(flags, router, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
