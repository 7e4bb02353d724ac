// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storely/meetgate/internal/handlers"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/middleware"
)

const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 30 * time.Second
	httpIdleTimeout  = 120 * time.Second
)

// gatewayHandlers bundles the route handlers mounted on the server.
type gatewayHandlers struct {
	Settings *handlers.SettingsHandlers
	Meetings *handlers.MeetingHandlers
	Webhooks *handlers.WebhookHandlers
}

// newRouter builds the gin engine with the middleware chain and all routes.
func newRouter(h gatewayHandlers, ready func() bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())

	h.Settings.Register(router)
	h.Meetings.Register(router)
	h.Webhooks.Register(router)

	router.GET("/livez", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/readyz", func(c *gin.Context) {
		if !ready() {
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// setupHTTPServer starts the HTTP listener in the background.
func setupHTTPServer(flags flags, router *gin.Engine, gracefulCloseWG *sync.WaitGroup) *http.Server {
	addr := flags.Bind + ":" + flags.Port
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		slog.With("addr", addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("HTTP server error")
		}
	}()

	return httpServer
}

// natsReady reports whether the NATS connection is usable.
func natsReady(natsConn *nats.Conn) func() bool {
	return func() bool {
		return natsConn != nil && natsConn.Status() == nats.CONNECTED
	}
}
