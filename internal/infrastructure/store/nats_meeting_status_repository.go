// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
)

// NatsMeetingStatusRepository is the NATS KV store repository for
// webhook-derived meeting status records.
type NatsMeetingStatusRepository struct {
	*NatsBaseRepository[models.MeetingStatusRecord]
	keyBuilder *KeyBuilder
}

// NewNatsMeetingStatusRepository creates a new NATS KV store repository for meeting status records.
func NewNatsMeetingStatusRepository(kvStore INatsKeyValue) *NatsMeetingStatusRepository {
	baseRepo := NewNatsBaseRepository[models.MeetingStatusRecord](kvStore, "meeting status")

	return &NatsMeetingStatusRepository{
		NatsBaseRepository: baseRepo,
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsMeetingStatusRepository) entityKey(meetingID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixStatus, meetingID)
}

// Get retrieves the status record for a meeting.
func (r *NatsMeetingStatusRepository) Get(ctx context.Context, meetingID string) (*models.MeetingStatusRecord, error) {
	if meetingID == "" {
		return nil, domain.NewValidationError("meeting ID is required")
	}

	return r.NatsBaseRepository.Get(ctx, r.entityKey(meetingID))
}

// Upsert writes the full status record for a meeting. Records are keyed by
// meeting id so reprocessing the same webhook converges on the same state.
func (r *NatsMeetingStatusRepository) Upsert(ctx context.Context, record *models.MeetingStatusRecord) error {
	if record == nil || record.MeetingID == "" {
		return domain.NewValidationError("meeting ID is required")
	}

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	return r.NatsBaseRepository.Put(ctx, r.entityKey(record.MeetingID), record)
}

// Delete removes the status record for a meeting.
func (r *NatsMeetingStatusRepository) Delete(ctx context.Context, meetingID string) error {
	if meetingID == "" {
		return domain.NewValidationError("meeting ID is required")
	}

	return r.NatsBaseRepository.Delete(ctx, r.entityKey(meetingID))
}

// ListByAccountID retrieves all status records belonging to a tenant account.
func (r *NatsMeetingStatusRepository) ListByAccountID(ctx context.Context, accountID string) ([]*models.MeetingStatusRecord, error) {
	allRecords, err := r.ListEntities(ctx, "")
	if err != nil {
		return nil, err
	}

	var matching []*models.MeetingStatusRecord
	for _, record := range allRecords {
		if record.TenantAccountID == accountID {
			matching = append(matching, record)
		}
	}

	return matching, nil
}
