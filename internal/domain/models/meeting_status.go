// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// Meeting status values recorded from webhook events.
const (
	MeetingStatusStarted = "started"
	MeetingStatusEnded   = "ended"
)

// MeetingStatusRecord is the webhook-derived state of one meeting, keyed by
// provider meeting id. Records are full-state upserts; the newest UpdatedAt
// wins.
type MeetingStatusRecord struct {
	MeetingID       string     `json:"meeting_id"`
	TenantAccountID string     `json:"tenant_account_id"`
	Status          string     `json:"status"`
	Topic           string     `json:"topic,omitempty"`
	HostID          string     `json:"host_id,omitempty"`
	Password        string     `json:"password,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Live reports whether the record still marks the meeting as running.
func (r *MeetingStatusRecord) Live() bool {
	return r != nil && r.Status == MeetingStatusStarted
}

// EndedWithin reports whether the meeting ended inside the given window
// before now.
func (r *MeetingStatusRecord) EndedWithin(window time.Duration, now time.Time) bool {
	if r == nil || r.Status != MeetingStatusEnded || r.EndedAt == nil {
		return false
	}
	return now.Sub(*r.EndedAt) <= window
}

// LiveMeeting is the computed answer of the live-status resolver, shaped for
// the storefront embed.
type LiveMeeting struct {
	ID       string `json:"meetingNumber"`
	Topic    string `json:"title,omitempty"`
	Password string `json:"password,omitempty"`
}
