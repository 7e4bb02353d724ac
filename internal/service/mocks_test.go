// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
)

// fakeSettingsRepository is an in-memory SettingsRepository for tests.
type fakeSettingsRepository struct {
	mu       sync.Mutex
	settings map[string]*models.TenantSettings
	getCalls int
	getErr   error
	saveErr  error
}

func newFakeSettingsRepository() *fakeSettingsRepository {
	return &fakeSettingsRepository{settings: make(map[string]*models.TenantSettings)}
}

func (f *fakeSettingsRepository) Get(_ context.Context, tenantID string) (*models.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	settings, ok := f.settings[tenantID]
	if !ok {
		return nil, domain.NewNotFoundError("tenant settings not found")
	}
	copied := *settings
	return &copied, nil
}

func (f *fakeSettingsRepository) Save(_ context.Context, settings *models.TenantSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *settings
	f.settings[settings.TenantID] = &copied
	return nil
}

func (f *fakeSettingsRepository) Delete(_ context.Context, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.settings[tenantID]; !ok {
		return domain.NewNotFoundError("tenant settings not found")
	}
	delete(f.settings, tenantID)
	return nil
}

func (f *fakeSettingsRepository) GetByAccountID(_ context.Context, accountID string) (*models.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, settings := range f.settings {
		if settings.AccountID == accountID {
			copied := *settings
			return &copied, nil
		}
	}
	return nil, domain.NewNotFoundError("no tenant for account id")
}

func (f *fakeSettingsRepository) ListWebhookSecrets(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var secrets []string
	for _, settings := range f.settings {
		if settings.WebhookSecret != "" {
			secrets = append(secrets, settings.WebhookSecret)
		}
	}
	return secrets, nil
}

// fakeStatusRepository is an in-memory MeetingStatusRepository for tests.
type fakeStatusRepository struct {
	mu        sync.Mutex
	records   map[string]*models.MeetingStatusRecord
	listErr   error
	upsertErr error
}

func newFakeStatusRepository() *fakeStatusRepository {
	return &fakeStatusRepository{records: make(map[string]*models.MeetingStatusRecord)}
}

func (f *fakeStatusRepository) Get(_ context.Context, meetingID string) (*models.MeetingStatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[meetingID]
	if !ok {
		return nil, domain.NewNotFoundError("meeting status not found")
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStatusRepository) Upsert(_ context.Context, record *models.MeetingStatusRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *record
	f.records[record.MeetingID] = &copied
	return nil
}

func (f *fakeStatusRepository) Delete(_ context.Context, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[meetingID]; !ok {
		return domain.NewNotFoundError("meeting status not found")
	}
	delete(f.records, meetingID)
	return nil
}

func (f *fakeStatusRepository) ListByAccountID(_ context.Context, accountID string) ([]*models.MeetingStatusRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matching []*models.MeetingStatusRecord
	for _, record := range f.records {
		if record.TenantAccountID == accountID {
			copied := *record
			matching = append(matching, &copied)
		}
	}
	return matching, nil
}

// fakeProvider is a call-counting MeetingProvider whose behavior is supplied
// per test through function fields. Unset fields return empty results.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int

	createMeetingFn   func(ctx context.Context, tenantID string, req domain.ProviderCreateMeeting) (*domain.ProviderMeeting, error)
	getMeetingFn      func(ctx context.Context, tenantID, meetingID string) (*domain.ProviderMeeting, error)
	endMeetingFn      func(ctx context.Context, tenantID, meetingID string) error
	listLiveFn        func(ctx context.Context, tenantID string) ([]domain.ProviderMeeting, error)
	listLiveForUserFn func(ctx context.Context, tenantID, userID string) ([]domain.ProviderMeeting, error)
	listUsersFn       func(ctx context.Context, tenantID string) ([]domain.ProviderUser, error)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{calls: make(map[string]int)}
}

func (f *fakeProvider) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeProvider) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeProvider) CreateMeeting(ctx context.Context, tenantID string, req domain.ProviderCreateMeeting) (*domain.ProviderMeeting, error) {
	f.record("CreateMeeting")
	if f.createMeetingFn != nil {
		return f.createMeetingFn(ctx, tenantID, req)
	}
	return &domain.ProviderMeeting{ID: "0"}, nil
}

func (f *fakeProvider) GetMeeting(ctx context.Context, tenantID, meetingID string) (*domain.ProviderMeeting, error) {
	f.record("GetMeeting")
	if f.getMeetingFn != nil {
		return f.getMeetingFn(ctx, tenantID, meetingID)
	}
	return nil, domain.NewNotFoundError("meeting not found")
}

func (f *fakeProvider) EndMeeting(ctx context.Context, tenantID, meetingID string) error {
	f.record("EndMeeting")
	if f.endMeetingFn != nil {
		return f.endMeetingFn(ctx, tenantID, meetingID)
	}
	return nil
}

func (f *fakeProvider) ListLiveMeetings(ctx context.Context, tenantID string) ([]domain.ProviderMeeting, error) {
	f.record("ListLiveMeetings")
	if f.listLiveFn != nil {
		return f.listLiveFn(ctx, tenantID)
	}
	return nil, nil
}

func (f *fakeProvider) ListLiveMeetingsForUser(ctx context.Context, tenantID, userID string) ([]domain.ProviderMeeting, error) {
	f.record("ListLiveMeetingsForUser")
	if f.listLiveForUserFn != nil {
		return f.listLiveForUserFn(ctx, tenantID, userID)
	}
	return nil, nil
}

func (f *fakeProvider) ListAccountUsers(ctx context.Context, tenantID string) ([]domain.ProviderUser, error) {
	f.record("ListAccountUsers")
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx, tenantID)
	}
	return nil, nil
}

// fakeBroker records credential validation and invalidation calls.
type fakeBroker struct {
	mu            sync.Mutex
	validateCalls int
	validateErr   error
	invalidated   []string
}

func (f *fakeBroker) ValidateCredentials(_ context.Context, _ *models.TenantSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	return f.validateErr
}

func (f *fakeBroker) Invalidate(tenantID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, tenantID)
}

// configuredSettings returns a complete credential set for a test tenant.
func configuredSettings(tenantID string) *models.TenantSettings {
	return &models.TenantSettings{
		TenantID:     tenantID,
		AccountID:    "acct-" + tenantID,
		ClientID:     "client-" + tenantID,
		ClientSecret: "secret-" + tenantID,
		SDKKey:       "sdkkey-" + tenantID,
		SDKSecret:    "sdksecret-" + tenantID,
	}
}
