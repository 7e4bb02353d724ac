// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/infrastructure/zoom/webhook"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/metrics"
	"github.com/storely/meetgate/pkg/utils"
)

// WebhookResult is the outcome of processing one webhook delivery.
type WebhookResult struct {
	Event     string
	Mode      webhook.VerificationMode
	Challenge *models.WebhookValidationResponse
}

// WebhookService ingests provider webhook deliveries and maintains the
// meeting status records the live resolver reads.
type WebhookService struct {
	SettingsRepository domain.SettingsRepository
	StatusRepository   domain.MeetingStatusRepository
	Provider           domain.MeetingProvider
	Validator          *webhook.Validator
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	settingsRepository domain.SettingsRepository,
	statusRepository domain.MeetingStatusRepository,
	provider domain.MeetingProvider,
	validator *webhook.Validator,
) *WebhookService {
	return &WebhookService{
		SettingsRepository: settingsRepository,
		StatusRepository:   statusRepository,
		Provider:           provider,
		Validator:          validator,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *WebhookService) ServiceReady() bool {
	return s.SettingsRepository != nil &&
		s.StatusRepository != nil &&
		s.Validator != nil
}

// ProcessEvent handles one raw webhook delivery. Processing is idempotent:
// records are keyed by meeting id, so redelivery converges on the same state.
func (s *WebhookService) ProcessEvent(ctx context.Context, body []byte, signature, timestamp string) (*WebhookResult, error) {
	var envelope models.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, domain.NewValidationError("malformed webhook payload", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("webhook_event", envelope.Event))

	if envelope.Event == models.WebhookEventURLValidation {
		return s.answerChallenge(ctx, envelope)
	}

	var payload models.WebhookMeetingPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return nil, domain.NewValidationError("malformed webhook payload", err)
	}

	settings, mode, err := s.verify(ctx, payload.AccountID, body, signature, timestamp)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(envelope.Event, string(webhook.VerificationModeRejected)).Inc()
		return nil, err
	}
	metrics.WebhookEvents.WithLabelValues(envelope.Event, string(mode)).Inc()

	result := &WebhookResult{Event: envelope.Event, Mode: mode}

	if !s.Validator.IsValidEvent(envelope.Event) {
		// Unknown events are acked so the provider does not retry them.
		slog.DebugContext(ctx, "ignoring unhandled webhook event")
		return result, nil
	}

	if envelope.Event == models.WebhookEventMeetingStarted {
		return result, s.handleMeetingStarted(ctx, settings, &payload)
	}
	return result, s.handleMeetingEnded(ctx, &payload)
}

// answerChallenge responds to the endpoint.url_validation handshake. The
// challenge payload carries no account id, so it is answered with any stored
// webhook secret; installs whose tenants use different secrets can only
// validate the endpoint for one of them.
func (s *WebhookService) answerChallenge(ctx context.Context, envelope models.WebhookEnvelope) (*WebhookResult, error) {
	var payload models.WebhookValidationPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil || payload.PlainToken == "" {
		return nil, domain.NewValidationError("malformed url_validation payload", err)
	}

	secrets, err := s.SettingsRepository.ListWebhookSecrets(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list webhook secrets", logging.ErrKey, err)
		return nil, err
	}
	if len(secrets) == 0 {
		return nil, domain.NewValidationError("no webhook secret configured")
	}

	metrics.WebhookEvents.WithLabelValues(envelope.Event, string(webhook.VerificationModeVerified)).Inc()

	return &WebhookResult{
		Event: envelope.Event,
		Mode:  webhook.VerificationModeVerified,
		Challenge: &models.WebhookValidationResponse{
			PlainToken:     payload.PlainToken,
			EncryptedToken: s.Validator.EncryptToken(secrets[0], payload.PlainToken),
		},
	}, nil
}

// verify maps the delivery to a tenant by account id and checks the
// signature with that tenant's secret. A tenant without a stored secret gets
// its events processed unverified rather than dropped, because losing
// lifecycle events corrupts live status for that tenant.
func (s *WebhookService) verify(ctx context.Context, accountID string, body []byte, signature, timestamp string) (*models.TenantSettings, webhook.VerificationMode, error) {
	if accountID == "" {
		slog.WarnContext(ctx, "webhook payload carries no account id, processing unverified")
		return nil, webhook.VerificationModeUnverified, nil
	}

	settings, err := s.SettingsRepository.GetByAccountID(ctx, accountID)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "failed to resolve webhook tenant",
				logging.ErrKey, err, "account_id", models.MaskString(accountID))
		}
		slog.WarnContext(ctx, "no tenant for webhook account id, processing unverified",
			"account_id", models.MaskString(accountID))
		return nil, webhook.VerificationModeUnverified, nil
	}

	if settings.WebhookSecret == "" {
		slog.WarnContext(ctx, "tenant has no webhook secret, processing unverified",
			"tenant_id", settings.TenantID)
		return settings, webhook.VerificationModeUnverified, nil
	}

	if err := s.Validator.ValidateSignature(settings.WebhookSecret, body, signature, timestamp); err != nil {
		slog.WarnContext(ctx, "webhook signature rejected",
			logging.ErrKey, err, "tenant_id", settings.TenantID)
		return nil, webhook.VerificationModeRejected, domain.NewUnauthorizedError("webhook signature verification failed", err)
	}

	return settings, webhook.VerificationModeVerified, nil
}

func (s *WebhookService) handleMeetingStarted(ctx context.Context, settings *models.TenantSettings, payload *models.WebhookMeetingPayload) error {
	meetingID := payload.Object.ID.String()
	if meetingID == "" {
		return domain.NewValidationError("webhook event carries no meeting id")
	}

	now := time.Now().UTC()
	startedAt := parseEventTime(payload.Object.StartTime, now)

	record := &models.MeetingStatusRecord{
		MeetingID:       meetingID,
		TenantAccountID: payload.AccountID,
		Status:          models.MeetingStatusStarted,
		Topic:           payload.Object.Topic,
		HostID:          payload.Object.HostID,
		Password:        payload.Object.Password,
		StartedAt:       utils.TimePtr(startedAt),
		UpdatedAt:       now,
	}

	// Started events usually omit the password; fetch it so the storefront
	// can offer one-click join.
	if record.Password == "" && settings != nil {
		meeting, err := s.Provider.GetMeeting(ctx, settings.TenantID, meetingID)
		if err != nil {
			slog.WarnContext(ctx, "password backfill lookup failed",
				logging.ErrKey, err, "meeting_id", meetingID)
		} else {
			record.Password = meeting.Password
			if record.Topic == "" {
				record.Topic = meeting.Topic
			}
		}
	}

	if err := s.StatusRepository.Upsert(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to record meeting start",
			logging.ErrKey, err, "meeting_id", meetingID, logging.PriorityCritical())
		return err
	}

	slog.InfoContext(ctx, "meeting start recorded", "meeting_id", meetingID)
	return nil
}

func (s *WebhookService) handleMeetingEnded(ctx context.Context, payload *models.WebhookMeetingPayload) error {
	meetingID := payload.Object.ID.String()
	if meetingID == "" {
		return domain.NewValidationError("webhook event carries no meeting id")
	}

	now := time.Now().UTC()
	endedAt := parseEventTime(payload.Object.EndTime, now)

	record := &models.MeetingStatusRecord{
		MeetingID:       meetingID,
		TenantAccountID: payload.AccountID,
		Status:          models.MeetingStatusEnded,
		Topic:           payload.Object.Topic,
		HostID:          payload.Object.HostID,
		EndedAt:         utils.TimePtr(endedAt),
		UpdatedAt:       now,
	}

	if err := s.StatusRepository.Upsert(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to record meeting end",
			logging.ErrKey, err, "meeting_id", meetingID, logging.PriorityCritical())
		return err
	}

	slog.InfoContext(ctx, "meeting end recorded", "meeting_id", meetingID)
	return nil
}

func parseEventTime(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return parsed.UTC()
}
