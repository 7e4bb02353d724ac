// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/storely/meetgate/internal/infrastructure/store"
	"github.com/storely/meetgate/internal/logging"
)

const (
	natsConnectTimeout  = 10 * time.Second
	natsShutdownTimeout = 5 * time.Second
	httpShutdownTimeout = 10 * time.Second
)

// repositories bundles the KV-backed repositories the services need.
type repositories struct {
	Settings *store.NatsTenantSettingsRepository
	Status   *store.NatsMeetingStatusRepository
}

// setupNATS connects to the NATS server and registers a drain on shutdown.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(natsShutdownTimeout),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).
					Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
		}),
		nats.Timeout(natsConnectTimeout),
	)
	if err != nil {
		return nil, err
	}

	// Balanced by the ClosedHandler once the drain completes.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// getKeyValueStores creates or binds the KV buckets backing the repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	settingsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameTenantSettings,
	})
	if err != nil {
		return nil, err
	}

	statusKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVStoreNameMeetingStatus,
	})
	if err != nil {
		return nil, err
	}

	return &repositories{
		Settings: store.NewNatsTenantSettingsRepository(settingsKV),
		Status:   store.NewNatsMeetingStatusRepository(statusKV),
	}, nil
}

// gracefulShutdown stops the HTTP server and drains NATS, waiting for both
// before returning.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down HTTP server")
	}

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			gracefulCloseWG.Done()
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
