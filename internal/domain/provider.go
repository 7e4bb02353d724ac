// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
)

// ProviderMeeting is a meeting as reported by the provider API.
type ProviderMeeting struct {
	ID       string
	UUID     string
	HostID   string
	Topic    string
	Status   string
	Password string
	JoinURL  string
	StartURL string
}

// MeetingProvider is the tenant-scoped provider API surface the gateway
// depends on. Implementations authenticate each call with the calling
// tenant's credentials.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, tenantID string, req ProviderCreateMeeting) (*ProviderMeeting, error)
	GetMeeting(ctx context.Context, tenantID, meetingID string) (*ProviderMeeting, error)
	EndMeeting(ctx context.Context, tenantID, meetingID string) error
	ListLiveMeetings(ctx context.Context, tenantID string) ([]ProviderMeeting, error)
	ListLiveMeetingsForUser(ctx context.Context, tenantID, userID string) ([]ProviderMeeting, error)
	ListAccountUsers(ctx context.Context, tenantID string) ([]ProviderUser, error)
}

// ProviderCreateMeeting is the provider-facing request body for meeting
// creation.
type ProviderCreateMeeting struct {
	Topic     string
	Type      int
	Duration  int
	Timezone  string
	StartTime string
	Settings  ProviderMeetingSettings
}

// ProviderMeetingSettings mirrors the provider's per-meeting settings object.
type ProviderMeetingSettings struct {
	JoinBeforeHost bool
	MuteUponEntry  bool
	WaitingRoom    bool
	AutoRecording  string
}

// ProviderUser is an account member as reported by the provider API.
type ProviderUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}
