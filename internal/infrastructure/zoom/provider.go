// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package zoom

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/infrastructure/zoom/api"
)

// Provider adapts the Zoom REST client to the domain MeetingProvider
// interface.
type Provider struct {
	client api.ClientAPI
}

// Ensure Provider implements MeetingProvider
var _ domain.MeetingProvider = (*Provider)(nil)

// NewProvider creates a MeetingProvider backed by the Zoom API client.
func NewProvider(client api.ClientAPI) *Provider {
	return &Provider{client: client}
}

// CreateMeeting creates a meeting under the tenant's account owner.
func (p *Provider) CreateMeeting(ctx context.Context, tenantID string, req domain.ProviderCreateMeeting) (*domain.ProviderMeeting, error) {
	apiReq := &api.CreateMeetingRequest{
		Topic:     req.Topic,
		Type:      req.Type,
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		StartTime: req.StartTime,
		Settings: &api.MeetingSettings{
			JoinBeforeHost: req.Settings.JoinBeforeHost,
			MuteUponEntry:  req.Settings.MuteUponEntry,
			WaitingRoom:    req.Settings.WaitingRoom,
			AutoRecording:  req.Settings.AutoRecording,
		},
	}

	resp, err := p.client.CreateMeeting(ctx, tenantID, api.UserSelf, apiReq)
	if err != nil {
		return nil, err
	}

	return toDomainMeeting(resp), nil
}

// GetMeeting retrieves a meeting by id. A provider 404 maps to a NotFound
// domain error.
func (p *Provider) GetMeeting(ctx context.Context, tenantID, meetingID string) (*domain.ProviderMeeting, error) {
	resp, err := p.client.GetMeeting(ctx, tenantID, meetingID)
	if err != nil {
		if errors.Is(err, api.ErrMeetingNotFound) {
			return nil, domain.NewNotFoundError("meeting "+meetingID+" not found at provider", err)
		}
		return nil, err
	}

	return toDomainMeeting(resp), nil
}

// EndMeeting stops a running meeting. Ending a meeting that no longer exists
// is not an error.
func (p *Provider) EndMeeting(ctx context.Context, tenantID, meetingID string) error {
	err := p.client.UpdateMeetingStatus(ctx, tenantID, meetingID, api.MeetingActionEnd)
	if err != nil && !errors.Is(err, api.ErrMeetingNotFound) {
		return err
	}
	return nil
}

// ListLiveMeetings lists the live meetings of the tenant's account owner.
func (p *Provider) ListLiveMeetings(ctx context.Context, tenantID string) ([]domain.ProviderMeeting, error) {
	return p.listLive(ctx, tenantID, api.UserSelf)
}

// ListLiveMeetingsForUser lists the live meetings of one account member.
func (p *Provider) ListLiveMeetingsForUser(ctx context.Context, tenantID, userID string) ([]domain.ProviderMeeting, error) {
	return p.listLive(ctx, tenantID, userID)
}

func (p *Provider) listLive(ctx context.Context, tenantID, userID string) ([]domain.ProviderMeeting, error) {
	resp, err := p.client.ListMeetings(ctx, tenantID, userID, api.MeetingListTypeLive)
	if err != nil {
		return nil, err
	}

	meetings := make([]domain.ProviderMeeting, 0, len(resp))
	for i := range resp {
		meetings = append(meetings, *toDomainMeeting(&resp[i]))
	}
	return meetings, nil
}

// ListAccountUsers lists the active members of the tenant's account.
func (p *Provider) ListAccountUsers(ctx context.Context, tenantID string) ([]domain.ProviderUser, error) {
	resp, err := p.client.GetUsers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	users := make([]domain.ProviderUser, 0, len(resp))
	for _, u := range resp {
		users = append(users, domain.ProviderUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return users, nil
}

func toDomainMeeting(resp *api.MeetingResponse) *domain.ProviderMeeting {
	meeting := &domain.ProviderMeeting{
		ID:       strconv.FormatInt(resp.ID, 10),
		UUID:     resp.UUID,
		HostID:   resp.HostID,
		Topic:    resp.Topic,
		Status:   resp.Status,
		Password: resp.Password,
		JoinURL:  resp.JoinURL,
		StartURL: resp.StartURL,
	}
	if meeting.Password == "" {
		meeting.Password = PasswordFromJoinURL(resp.JoinURL)
	}
	return meeting
}

// PasswordFromJoinURL recovers the meeting password from the pwd query
// parameter of a join URL. Some listing endpoints omit the password field but
// still embed it in the URL.
func PasswordFromJoinURL(joinURL string) string {
	if joinURL == "" {
		return ""
	}
	parsed, err := url.Parse(joinURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("pwd")
}
