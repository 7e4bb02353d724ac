// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/logging"
)

// Join token lifetime parameters. The issued-at is backdated to absorb clock
// skew between the gateway and the SDK verifying the token.
const (
	joinTokenBackdate = 30 * time.Second
	joinTokenLifetime = 2 * time.Hour
)

// Join roles accepted by the meeting SDK.
const (
	JoinRoleAttendee = 0
	JoinRoleHost     = 1
)

// JoinToken is a signed meeting SDK token plus the key the SDK client needs.
type JoinToken struct {
	Token  string
	SDKKey string
}

// SignatureService issues signed join tokens for the meeting SDK embed.
type SignatureService struct {
	SettingsService *SettingsService
}

// NewSignatureService creates a new SignatureService.
func NewSignatureService(settingsService *SettingsService) *SignatureService {
	return &SignatureService{SettingsService: settingsService}
}

// ServiceReady checks if the service is ready for use.
func (s *SignatureService) ServiceReady() bool {
	return s.SettingsService != nil
}

// GenerateJoinToken signs a join token for the given meeting number and role
// with the tenant's SDK secret.
func (s *SignatureService) GenerateJoinToken(ctx context.Context, tenantID, meetingNumber string, role int) (*JoinToken, error) {
	meetingNumber = NormalizeMeetingNumber(meetingNumber)
	if meetingNumber == "" {
		return nil, domain.NewValidationError("meeting number is required")
	}
	if role != JoinRoleAttendee && role != JoinRoleHost {
		return nil, domain.NewValidationError("role must be 0 (attendee) or 1 (host)")
	}

	settings := s.SettingsService.GetSettings(ctx, tenantID)
	if settings == nil || settings.SDKKey == "" || settings.SDKSecret == "" {
		return nil, domain.NewSdkNotConfiguredError(tenantID)
	}

	now := time.Now().UTC()
	iat := now.Add(-joinTokenBackdate)
	exp := now.Add(joinTokenLifetime)

	claims := jwt.MapClaims{
		"appKey":   settings.SDKKey,
		"sdkKey":   settings.SDKKey,
		"mn":       meetingNumber,
		"role":     role,
		"iat":      iat.Unix(),
		"exp":      exp.Unix(),
		"tokenExp": exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(settings.SDKSecret))
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign join token",
			logging.ErrKey, err, "tenant_id", tenantID)
		return nil, domain.NewInternalError("failed to sign join token", err)
	}

	// The token itself is a credential and is never logged.
	slog.InfoContext(ctx, "join token issued",
		"tenant_id", tenantID, "meeting_number", meetingNumber, "role", role)

	return &JoinToken{Token: signed, SDKKey: settings.SDKKey}, nil
}

// NormalizeMeetingNumber strips the spaces and dashes users paste in with
// meeting numbers.
func NormalizeMeetingNumber(meetingNumber string) string {
	replacer := strings.NewReplacer(" ", "", "-", "")
	return replacer.Replace(strings.TrimSpace(meetingNumber))
}
