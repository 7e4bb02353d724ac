// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrMeetingNotFound is returned when the provider reports 404 for a meeting.
// Meetings vanish on their own once they end, so callers often treat this as
// a non-error.
var ErrMeetingNotFound = errors.New("meeting not found")

// Meeting type constants for Zoom API
const (
	MeetingTypeInstant   = 1
	MeetingTypeScheduled = 2
)

// Meeting listing type filters
const (
	MeetingListTypeLive      = "live"
	MeetingListTypeScheduled = "scheduled"
)

// Meeting status constants for Zoom API
const (
	MeetingStatusWaiting = "waiting"
	MeetingStatusStarted = "started"
)

// Meeting status update actions
const (
	MeetingActionEnd = "end"
)

// listPageSize bounds listing calls; storefronts care about the first live
// meeting, not the full catalogue.
const listPageSize = 30

// CreateMeetingRequest represents the request to create a Zoom meeting
type CreateMeetingRequest struct {
	Topic     string           `json:"topic"`
	Type      int              `json:"type"`
	StartTime string           `json:"start_time,omitempty"`
	Duration  int              `json:"duration,omitempty"`
	Timezone  string           `json:"timezone,omitempty"`
	Agenda    string           `json:"agenda,omitempty"`
	Settings  *MeetingSettings `json:"settings,omitempty"`
}

// MeetingSettings represents Zoom meeting settings
type MeetingSettings struct {
	HostVideo        bool   `json:"host_video"`
	ParticipantVideo bool   `json:"participant_video"`
	JoinBeforeHost   bool   `json:"join_before_host"`
	MuteUponEntry    bool   `json:"mute_upon_entry"`
	WaitingRoom      bool   `json:"waiting_room"`
	AutoRecording    string `json:"auto_recording"`
}

// MeetingResponse represents a Zoom meeting as returned by the API
type MeetingResponse struct {
	ID        int64            `json:"id"`
	UUID      string           `json:"uuid"`
	HostID    string           `json:"host_id"`
	Topic     string           `json:"topic"`
	Type      int              `json:"type"`
	Status    string           `json:"status"`
	StartTime string           `json:"start_time"`
	Duration  int              `json:"duration"`
	Timezone  string           `json:"timezone"`
	CreatedAt string           `json:"created_at"`
	StartURL  string           `json:"start_url"`
	JoinURL   string           `json:"join_url"`
	Password  string           `json:"password"`
	Settings  *MeetingSettings `json:"settings"`
}

// MeetingsListResponse represents the response from the meetings listing API
type MeetingsListResponse struct {
	PageCount    int               `json:"page_count"`
	PageSize     int               `json:"page_size"`
	TotalRecords int               `json:"total_records"`
	Meetings     []MeetingResponse `json:"meetings"`
}

// meetingStatusRequest is the body of a meeting status update
type meetingStatusRequest struct {
	Action string `json:"action"`
}

// CreateMeeting creates a new meeting for the given user.
// This is a pure API call with no business logic.
func (c *Client) CreateMeeting(ctx context.Context, tenantID, userID string, request *CreateMeetingRequest) (*MeetingResponse, error) {
	path := fmt.Sprintf("/users/%s/meetings", url.PathEscape(userID))
	resp, err := c.doRequest(ctx, tenantID, http.MethodPost, path, request)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(body)
	}

	var meetingResp MeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meetingResp); err != nil {
		return nil, fmt.Errorf("failed to decode meeting response: %w", err)
	}

	return &meetingResp, nil
}

// GetMeeting retrieves a single meeting by id.
// This is a pure API call with no business logic.
func (c *Client) GetMeeting(ctx context.Context, tenantID, meetingID string) (*MeetingResponse, error) {
	path := fmt.Sprintf("/meetings/%s", url.PathEscape(meetingID))
	resp, err := c.doRequest(ctx, tenantID, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrMeetingNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(body)
	}

	var meetingResp MeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meetingResp); err != nil {
		return nil, fmt.Errorf("failed to decode meeting response: %w", err)
	}

	return &meetingResp, nil
}

// UpdateMeetingStatus changes a meeting's status, e.g. action "end" to stop a
// running meeting. This is a pure API call with no business logic.
func (c *Client) UpdateMeetingStatus(ctx context.Context, tenantID, meetingID, action string) error {
	path := fmt.Sprintf("/meetings/%s/status", url.PathEscape(meetingID))
	resp, err := c.doRequest(ctx, tenantID, http.MethodPut, path, &meetingStatusRequest{Action: action})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrMeetingNotFound
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(body)
	}

	return nil
}

// ListMeetings lists a user's meetings filtered by type ("live", "scheduled").
// This is a pure API call with no business logic.
func (c *Client) ListMeetings(ctx context.Context, tenantID, userID, meetingType string) ([]MeetingResponse, error) {
	path := fmt.Sprintf("/users/%s/meetings?type=%s&page_size=%d",
		url.PathEscape(userID), url.QueryEscape(meetingType), listPageSize)
	resp, err := c.doRequest(ctx, tenantID, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(body)
	}

	var listResp MeetingsListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode meetings list response: %w", err)
	}

	return listResp.Meetings, nil
}
