// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/storely/meetgate/internal/logging"
)

// User status constants for Zoom API
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusPending  = "pending"
)

// UserSelf is the user id alias for the authenticated account owner.
const UserSelf = "me"

// ZoomUser represents a user in the Zoom account
type ZoomUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Type      int    `json:"type"`
	Status    string `json:"status"`
}

// ZoomUsersResponse represents the response from the users API
type ZoomUsersResponse struct {
	PageCount   int        `json:"page_count"`
	PageNumber  int        `json:"page_number"`
	PageSize    int        `json:"page_size"`
	TotalRecord int        `json:"total_records"`
	Users       []ZoomUser `json:"users"`
}

// GetUsers retrieves active users from the tenant's Zoom account
func (c *Client) GetUsers(ctx context.Context, tenantID string) ([]ZoomUser, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_users"))

	path := fmt.Sprintf("/users?status=active&page_size=%d", listPageSize)
	resp, err := c.doRequest(ctx, tenantID, http.MethodGet, path, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get Zoom users", logging.ErrKey, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := parseErrorResponse(body)
		slog.ErrorContext(ctx, "Zoom API returned error", logging.ErrKey, err, "status", resp.StatusCode)
		return nil, err
	}

	var usersResp ZoomUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&usersResp); err != nil {
		slog.ErrorContext(ctx, "failed to decode users response", logging.ErrKey, err)
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	slog.DebugContext(ctx, "retrieved Zoom users",
		"user_count", len(usersResp.Users),
		"total_records", usersResp.TotalRecord)

	return usersResp.Users, nil
}
