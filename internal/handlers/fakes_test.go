// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"sync"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
)

// memorySettingsRepository is an in-memory SettingsRepository for handler tests.
type memorySettingsRepository struct {
	mu       sync.Mutex
	settings map[string]*models.TenantSettings
}

func newMemorySettingsRepository() *memorySettingsRepository {
	return &memorySettingsRepository{settings: make(map[string]*models.TenantSettings)}
}

func (m *memorySettingsRepository) Get(_ context.Context, tenantID string) (*models.TenantSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings, ok := m.settings[tenantID]
	if !ok {
		return nil, domain.NewNotFoundError("tenant settings not found")
	}
	copied := *settings
	return &copied, nil
}

func (m *memorySettingsRepository) Save(_ context.Context, settings *models.TenantSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *settings
	m.settings[settings.TenantID] = &copied
	return nil
}

func (m *memorySettingsRepository) Delete(_ context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[tenantID]; !ok {
		return domain.NewNotFoundError("tenant settings not found")
	}
	delete(m.settings, tenantID)
	return nil
}

func (m *memorySettingsRepository) GetByAccountID(_ context.Context, accountID string) (*models.TenantSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, settings := range m.settings {
		if settings.AccountID == accountID {
			copied := *settings
			return &copied, nil
		}
	}
	return nil, domain.NewNotFoundError("no tenant for account id")
}

func (m *memorySettingsRepository) ListWebhookSecrets(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var secrets []string
	for _, settings := range m.settings {
		if settings.WebhookSecret != "" {
			secrets = append(secrets, settings.WebhookSecret)
		}
	}
	return secrets, nil
}

// memoryStatusRepository is an in-memory MeetingStatusRepository.
type memoryStatusRepository struct {
	mu      sync.Mutex
	records map[string]*models.MeetingStatusRecord
}

func newMemoryStatusRepository() *memoryStatusRepository {
	return &memoryStatusRepository{records: make(map[string]*models.MeetingStatusRecord)}
}

func (m *memoryStatusRepository) Get(_ context.Context, meetingID string) (*models.MeetingStatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[meetingID]
	if !ok {
		return nil, domain.NewNotFoundError("meeting status not found")
	}
	copied := *record
	return &copied, nil
}

func (m *memoryStatusRepository) Upsert(_ context.Context, record *models.MeetingStatusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.MeetingID] = &copied
	return nil
}

func (m *memoryStatusRepository) Delete(_ context.Context, meetingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, meetingID)
	return nil
}

func (m *memoryStatusRepository) ListByAccountID(_ context.Context, accountID string) ([]*models.MeetingStatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []*models.MeetingStatusRecord
	for _, record := range m.records {
		if record.TenantAccountID == accountID {
			copied := *record
			matching = append(matching, &copied)
		}
	}
	return matching, nil
}

// scriptedProvider is a MeetingProvider with scriptable behavior.
type scriptedProvider struct {
	mu    sync.Mutex
	ended []string

	createMeetingFn func(ctx context.Context, tenantID string, req domain.ProviderCreateMeeting) (*domain.ProviderMeeting, error)
	getMeetingFn    func(ctx context.Context, tenantID, meetingID string) (*domain.ProviderMeeting, error)
	listLiveFn      func(ctx context.Context, tenantID string) ([]domain.ProviderMeeting, error)
}

func (p *scriptedProvider) CreateMeeting(ctx context.Context, tenantID string, req domain.ProviderCreateMeeting) (*domain.ProviderMeeting, error) {
	if p.createMeetingFn != nil {
		return p.createMeetingFn(ctx, tenantID, req)
	}
	return &domain.ProviderMeeting{ID: "900", Topic: req.Topic}, nil
}

func (p *scriptedProvider) GetMeeting(ctx context.Context, tenantID, meetingID string) (*domain.ProviderMeeting, error) {
	if p.getMeetingFn != nil {
		return p.getMeetingFn(ctx, tenantID, meetingID)
	}
	return nil, domain.NewNotFoundError("meeting not found")
}

func (p *scriptedProvider) EndMeeting(_ context.Context, _, meetingID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = append(p.ended, meetingID)
	return nil
}

func (p *scriptedProvider) endedMeetings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ended...)
}

func (p *scriptedProvider) ListLiveMeetings(ctx context.Context, tenantID string) ([]domain.ProviderMeeting, error) {
	if p.listLiveFn != nil {
		return p.listLiveFn(ctx, tenantID)
	}
	return nil, nil
}

func (p *scriptedProvider) ListLiveMeetingsForUser(context.Context, string, string) ([]domain.ProviderMeeting, error) {
	return nil, nil
}

func (p *scriptedProvider) ListAccountUsers(context.Context, string) ([]domain.ProviderUser, error) {
	return nil, nil
}
