// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package api is the low-level Zoom REST client. Calls are tenant-scoped:
// every request is authenticated with a token minted for the calling tenant.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/metrics"
)

// TokenProvider supplies a valid access token for a tenant.
type TokenProvider interface {
	Token(ctx context.Context, tenantID string) (string, error)
}

// ClientAPI defines the interface for Zoom API operations.
// This allows for easy mocking and testing of the Zoom client.
type ClientAPI interface {
	CreateMeeting(ctx context.Context, tenantID, userID string, request *CreateMeetingRequest) (*MeetingResponse, error)
	GetMeeting(ctx context.Context, tenantID, meetingID string) (*MeetingResponse, error)
	UpdateMeetingStatus(ctx context.Context, tenantID, meetingID, action string) error
	ListMeetings(ctx context.Context, tenantID, userID, meetingType string) ([]MeetingResponse, error)
	GetUsers(ctx context.Context, tenantID string) ([]ZoomUser, error)
}

const (
	// BaseURL is the base URL for Zoom API
	BaseURL = "https://api.zoom.us/v2"
	// DefaultClientTimeout bounds a single API request. Requests are never
	// retried; callers decide what a failed call means for them.
	DefaultClientTimeout = 10 * time.Second
)

// Client represents a Zoom API client
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenProvider
}

// Config holds the configuration for the Zoom client
type Config struct {
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new Zoom API client
func NewClient(tokens TokenProvider, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		tokens: tokens,
	}
}

// doRequest performs one authenticated HTTP request to the Zoom API. There is
// no retry loop: a failed call surfaces immediately with a typed error.
func (c *Client) doRequest(ctx context.Context, tenantID, method, path string, body any) (*http.Response, error) {
	token, err := c.tokens.Token(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	slog.DebugContext(ctx, "making provider API request",
		"method", method,
		"path", path,
		"tenant_id", tenantID,
	)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		if isTimeout(err) {
			metrics.ProviderRequests.WithLabelValues(method, path, "timeout").Inc()
			slog.ErrorContext(ctx, "provider API request timed out",
				"method", method,
				"path", path,
				"duration", duration.String(),
				logging.ErrKey, err)
			return nil, domain.NewUnavailableError(
				fmt.Sprintf("provider request %s %s timed out", method, path), err)
		}
		metrics.ProviderRequests.WithLabelValues(method, path, "error").Inc()
		slog.ErrorContext(ctx, "provider API request failed",
			"method", method,
			"path", path,
			"duration", duration.String(),
			logging.ErrKey, err)
		return nil, domain.NewUnavailableError(
			fmt.Sprintf("provider request %s %s failed", method, path), err)
	}

	metrics.ProviderRequests.WithLabelValues(method, path, outcomeForStatus(resp.StatusCode)).Inc()

	slog.InfoContext(ctx, "provider API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", duration.String(),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		slog.ErrorContext(ctx, "provider API error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(body),
			logging.ErrKey, fmt.Errorf("status: %d", resp.StatusCode))
	}

	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeForStatus(statusCode int) string {
	if statusCode < http.StatusBadRequest {
		return "ok"
	}
	return "error"
}

// parseErrorResponse attempts to parse a Zoom API error response
func parseErrorResponse(body []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("zoom API error (code %d): %s", errResp.Code, errResp.Message)
	}
	return fmt.Errorf("zoom API error: %s", string(body))
}
