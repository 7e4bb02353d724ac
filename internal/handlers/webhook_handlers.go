// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/service"
)

// Zoom webhook signature headers.
const (
	HeaderZoomSignature = "x-zm-signature"
	HeaderZoomTimestamp = "x-zm-request-timestamp"
)

// maxWebhookBody bounds the webhook request body.
const maxWebhookBody = 1 << 20

// WebhookHandlers serves the provider webhook endpoint.
type WebhookHandlers struct {
	WebhookService *service.WebhookService
}

// NewWebhookHandlers creates webhook handlers.
func NewWebhookHandlers(webhookService *service.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{WebhookService: webhookService}
}

// Register wires the webhook routes onto the router.
func (h *WebhookHandlers) Register(r gin.IRouter) {
	r.POST("/webhook", h.HandleEvent)
	r.GET("/webhook", h.Ack)
}

// HandleEvent processes one webhook delivery. Signature verification runs
// against the raw body, so the body is read before any parsing.
func (h *WebhookHandlers) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		writeError(c, domain.NewValidationError("failed to read webhook body", err))
		return
	}

	result, err := h.WebhookService.ProcessEvent(
		c.Request.Context(),
		body,
		c.GetHeader(HeaderZoomSignature),
		c.GetHeader(HeaderZoomTimestamp),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	if result.Challenge != nil {
		c.JSON(http.StatusOK, result.Challenge)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Ack answers provider endpoint probes.
func (h *WebhookHandlers) Ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
