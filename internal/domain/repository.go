// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/storely/meetgate/internal/domain/models"
)

// SettingsRepository defines the interface for tenant settings storage.
// This interface can be implemented by different storage backends (NATS KV, PostgreSQL, etc.)
type SettingsRepository interface {
	Get(ctx context.Context, tenantID string) (*models.TenantSettings, error)
	Save(ctx context.Context, settings *models.TenantSettings) error
	Delete(ctx context.Context, tenantID string) error

	// Webhook support: events carry the provider account id, not the tenant id.
	GetByAccountID(ctx context.Context, accountID string) (*models.TenantSettings, error)
	ListWebhookSecrets(ctx context.Context) ([]string, error)
}

// MeetingStatusRepository defines the interface for webhook-derived meeting
// status records.
type MeetingStatusRepository interface {
	Get(ctx context.Context, meetingID string) (*models.MeetingStatusRecord, error)
	Upsert(ctx context.Context, record *models.MeetingStatusRecord) error
	Delete(ctx context.Context, meetingID string) error
	ListByAccountID(ctx context.Context, accountID string) ([]*models.MeetingStatusRecord, error)
}
