// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/pkg/concurrent"
	"github.com/storely/meetgate/pkg/utils"
)

// Instant meeting defaults. Storefront meetings are informal drop-in rooms:
// attendees may join before the host, arrive muted, and nothing is recorded.
const (
	instantMeetingDuration = 120
	instantMeetingTimezone = "UTC"
	defaultMeetingTitle    = "Live Meeting"
	autoRecordingNone      = "none"
)

// MeetingService drives the meeting lifecycle against the provider.
type MeetingService struct {
	SettingsService  *SettingsService
	StatusRepository domain.MeetingStatusRepository
	Provider         domain.MeetingProvider
	Pool             *concurrent.WorkerPool
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	settingsService *SettingsService,
	statusRepository domain.MeetingStatusRepository,
	provider domain.MeetingProvider,
) *MeetingService {
	return &MeetingService{
		SettingsService:  settingsService,
		StatusRepository: statusRepository,
		Provider:         provider,
		Pool:             concurrent.NewWorkerPool(5),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.SettingsService != nil &&
		s.StatusRepository != nil &&
		s.Provider != nil
}

// CreateInstantMeeting ends anything already running for the tenant, then
// creates a meeting starting now. At most one storefront meeting is live per
// tenant at any time.
func (s *MeetingService) CreateInstantMeeting(ctx context.Context, tenantID, topic string) (*domain.ProviderMeeting, error) {
	settings := s.SettingsService.GetSettings(ctx, tenantID)
	if !settings.Configured() {
		return nil, domain.NewCredentialsMissingError(tenantID)
	}

	s.EndAllLive(ctx, tenantID)

	if topic == "" {
		topic = s.defaultTopic(settings)
	}

	now := time.Now().UTC()
	meeting, err := s.Provider.CreateMeeting(ctx, tenantID, domain.ProviderCreateMeeting{
		Topic:     topic,
		Type:      2, // scheduled, starting immediately
		Duration:  instantMeetingDuration,
		Timezone:  instantMeetingTimezone,
		StartTime: now.Format("2006-01-02T15:04:05Z"),
		Settings: domain.ProviderMeetingSettings{
			JoinBeforeHost: true,
			MuteUponEntry:  true,
			WaitingRoom:    false,
			AutoRecording:  autoRecordingNone,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create instant meeting",
			logging.ErrKey, err, "tenant_id", tenantID)
		return nil, err
	}

	slog.InfoContext(ctx, "instant meeting created",
		"tenant_id", tenantID, "meeting_id", meeting.ID, "topic", topic)

	return meeting, nil
}

// defaultTopic builds the default meeting title: the tenant's base title (or
// a generic one) suffixed with today's date as MM-DD-YYYY.
func (s *MeetingService) defaultTopic(settings *models.TenantSettings) string {
	base := utils.CoalesceString(settings.DefaultMeetingTitle, defaultMeetingTitle)
	now := time.Now().UTC()
	return fmt.Sprintf("%s %02d-%02d-%04d", base, now.Month(), now.Day(), now.Year())
}

// EndMeeting stops a meeting and records it as ended. Ending a meeting the
// provider no longer knows is treated as success.
func (s *MeetingService) EndMeeting(ctx context.Context, tenantID, meetingID string) error {
	if meetingID == "" {
		return domain.NewValidationError("meeting ID is required")
	}

	settings := s.SettingsService.GetSettings(ctx, tenantID)
	if !settings.Configured() {
		return domain.NewCredentialsMissingError(tenantID)
	}

	if err := s.Provider.EndMeeting(ctx, tenantID, meetingID); err != nil {
		slog.ErrorContext(ctx, "failed to end meeting",
			logging.ErrKey, err, "tenant_id", tenantID, "meeting_id", meetingID)
		return err
	}

	// Record the end immediately so the resolver stops reporting the meeting
	// live before the webhook arrives.
	now := time.Now().UTC()
	err := s.StatusRepository.Upsert(ctx, &models.MeetingStatusRecord{
		MeetingID:       meetingID,
		TenantAccountID: settings.AccountID,
		Status:          models.MeetingStatusEnded,
		EndedAt:         utils.TimePtr(now),
		UpdatedAt:       now,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record meeting end",
			logging.ErrKey, err, "meeting_id", meetingID)
	}

	slog.InfoContext(ctx, "meeting ended", "tenant_id", tenantID, "meeting_id", meetingID)
	return nil
}

// EndAllLive sweeps every meeting the gateway believes is live for the tenant
// and ends it. The sweep is best-effort: individual failures are logged and
// the rest of the sweep continues.
func (s *MeetingService) EndAllLive(ctx context.Context, tenantID string) {
	candidates := s.liveCandidates(ctx, tenantID)
	if len(candidates) == 0 {
		return
	}

	functions := make([]func() error, 0, len(candidates))
	for _, meetingID := range candidates {
		functions = append(functions, func() error {
			return s.EndMeeting(ctx, tenantID, meetingID)
		})
	}

	errs := s.Pool.RunAll(ctx, functions...)
	for _, err := range errs {
		slog.WarnContext(ctx, "failed to end live meeting during sweep",
			logging.ErrKey, err, "tenant_id", tenantID)
	}

	slog.InfoContext(ctx, "live meeting sweep completed",
		"tenant_id", tenantID, "candidates", len(candidates), "failures", len(errs))
}

// liveCandidates collects the meeting ids that may be live: webhook records
// plus the provider's own live listing. Lookup failures shrink the candidate
// set instead of failing the sweep.
func (s *MeetingService) liveCandidates(ctx context.Context, tenantID string) []string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(meetingID string) {
		if meetingID != "" && !seen[meetingID] {
			seen[meetingID] = true
			candidates = append(candidates, meetingID)
		}
	}

	settings := s.SettingsService.GetSettings(ctx, tenantID)
	if settings != nil && settings.AccountID != "" {
		records, err := s.StatusRepository.ListByAccountID(ctx, settings.AccountID)
		if err != nil {
			slog.WarnContext(ctx, "failed to list status records for sweep",
				logging.ErrKey, err, "tenant_id", tenantID)
		}
		for _, record := range records {
			if record.Live() {
				add(record.MeetingID)
			}
		}
	}

	liveListing, err := s.Provider.ListLiveMeetings(ctx, tenantID)
	if err != nil {
		slog.WarnContext(ctx, "failed to list live meetings for sweep",
			logging.ErrKey, err, "tenant_id", tenantID)
	}
	for _, meeting := range liveListing {
		add(meeting.ID)
	}

	return candidates
}
