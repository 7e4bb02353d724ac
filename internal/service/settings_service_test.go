// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/pkg/cache"
)

func newSettingsServiceForTest(repo *fakeSettingsRepository, config ServiceConfig) (*SettingsService, *fakeBroker) {
	broker := &fakeBroker{}
	svc := NewSettingsService(repo, cache.NewTTLCache[*models.TenantSettings](time.Minute, 16), config)
	svc.Broker = broker
	return svc, broker
}

func TestSettingsService_GetSettings_CachesReads(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, _ := newSettingsServiceForTest(repo, ServiceConfig{})

	first := svc.GetSettings(context.Background(), "biz_1")
	require.NotNil(t, first)

	second := svc.GetSettings(context.Background(), "biz_1")
	require.NotNil(t, second)
	assert.Equal(t, first.AccountID, second.AccountID)
	assert.Equal(t, 1, repo.getCalls, "second read should come from cache")
}

func TestSettingsService_GetSettings_MissingTenant(t *testing.T) {
	svc, _ := newSettingsServiceForTest(newFakeSettingsRepository(), ServiceConfig{})

	assert.Nil(t, svc.GetSettings(context.Background(), "biz_1"))
	assert.Nil(t, svc.GetSettings(context.Background(), ""))
}

func TestSettingsService_GetSettings_StoreFailureDegradesToMiss(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.getErr = domain.NewInternalError("kv store unavailable")
	svc, _ := newSettingsServiceForTest(repo, ServiceConfig{})

	assert.Nil(t, svc.GetSettings(context.Background(), "biz_1"))
}

func TestSettingsService_GetSettings_FallbackFromEnvironment(t *testing.T) {
	fallback := configuredSettings("env")
	fallback.TenantID = ""
	svc, _ := newSettingsServiceForTest(newFakeSettingsRepository(), ServiceConfig{
		FallbackSettings: fallback,
	})

	settings := svc.GetSettings(context.Background(), "biz_1")
	require.NotNil(t, settings)
	assert.Equal(t, "biz_1", settings.TenantID, "fallback is stamped with the requesting tenant")
	assert.Equal(t, fallback.AccountID, settings.AccountID)
	assert.True(t, settings.Configured())
}

func TestSettingsService_SaveSettings_MergesPartialUpdate(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, broker := newSettingsServiceForTest(repo, ServiceConfig{})

	merged, err := svc.SaveSettings(context.Background(), "biz_1", &models.TenantSettings{
		DefaultMeetingTitle: "Friday Drop",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Friday Drop", merged.DefaultMeetingTitle)
	assert.Equal(t, "secret-biz_1", merged.ClientSecret, "omitted fields keep stored values")
	assert.Equal(t, 0, broker.validateCalls, "unchanged credentials are not re-validated")
	assert.Equal(t, []string{"biz_1"}, broker.invalidated)
}

func TestSettingsService_SaveSettings_ValidatesChangedCredentials(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, broker := newSettingsServiceForTest(repo, ServiceConfig{})

	_, err := svc.SaveSettings(context.Background(), "biz_1", &models.TenantSettings{
		ClientSecret: "rotated-secret",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, broker.validateCalls)
}

func TestSettingsService_SaveSettings_ValidationFailureBlocksSave(t *testing.T) {
	repo := newFakeSettingsRepository()
	svc, broker := newSettingsServiceForTest(repo, ServiceConfig{})
	broker.validateErr = &domain.CredentialsInvalidError{Reason: domain.CredentialReasonInvalidClient}

	_, err := svc.SaveSettings(context.Background(), "biz_1", configuredSettings("biz_1"), false)
	require.Error(t, err)

	var credErr *domain.CredentialsInvalidError
	assert.True(t, errors.As(err, &credErr))
	assert.Empty(t, repo.settings, "rejected credentials must not be persisted")
}

func TestSettingsService_SaveSettings_SkipValidation(t *testing.T) {
	repo := newFakeSettingsRepository()
	svc, broker := newSettingsServiceForTest(repo, ServiceConfig{})

	_, err := svc.SaveSettings(context.Background(), "biz_1", configuredSettings("biz_1"), true)
	require.NoError(t, err)
	assert.Equal(t, 0, broker.validateCalls)
	assert.NotNil(t, repo.settings["biz_1"])
}

func TestSettingsService_SaveSettings_InvalidatesCache(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, _ := newSettingsServiceForTest(repo, ServiceConfig{})

	// Prime the cache, then save a new title.
	_ = svc.GetSettings(context.Background(), "biz_1")
	_, err := svc.SaveSettings(context.Background(), "biz_1", &models.TenantSettings{
		DefaultMeetingTitle: "New Title",
	}, false)
	require.NoError(t, err)

	settings := svc.GetSettings(context.Background(), "biz_1")
	require.NotNil(t, settings)
	assert.Equal(t, "New Title", settings.DefaultMeetingTitle, "read after save must see the new value")
}

func TestSettingsService_SaveSettings_RequiresTenantID(t *testing.T) {
	svc, _ := newSettingsServiceForTest(newFakeSettingsRepository(), ServiceConfig{})

	_, err := svc.SaveSettings(context.Background(), "", &models.TenantSettings{}, true)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestSettingsService_DeleteSettings(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, broker := newSettingsServiceForTest(repo, ServiceConfig{})

	// Prime the cache so the delete has something to invalidate.
	_ = svc.GetSettings(context.Background(), "biz_1")

	require.NoError(t, svc.DeleteSettings(context.Background(), "biz_1"))
	assert.Nil(t, svc.GetSettings(context.Background(), "biz_1"))
	assert.Equal(t, []string{"biz_1"}, broker.invalidated)
}

func TestSettingsService_Credentials(t *testing.T) {
	repo := newFakeSettingsRepository()
	repo.settings["biz_1"] = configuredSettings("biz_1")
	svc, _ := newSettingsServiceForTest(repo, ServiceConfig{})

	settings, err := svc.Credentials(context.Background(), "biz_1")
	require.NoError(t, err)
	assert.Equal(t, "acct-biz_1", settings.AccountID)

	_, err = svc.Credentials(context.Background(), "biz_2")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestSettingsService_IsAdmin(t *testing.T) {
	repo := newFakeSettingsRepository()
	settings := configuredSettings("biz_1")
	settings.AdminUsernames = []string{"Alice", " bob "}
	repo.settings["biz_1"] = settings

	svc, _ := newSettingsServiceForTest(repo, ServiceConfig{
		GlobalAdminUsernames: []string{"platform-op"},
	})

	tests := []struct {
		name   string
		caller *domain.Caller
		want   bool
	}{
		{"nil caller", nil, false},
		{"owner", &domain.Caller{UserID: "u1", Owner: true}, true},
		{"tenant admin exact", &domain.Caller{UserID: "u2", Username: "Alice"}, true},
		{"tenant admin case-insensitive", &domain.Caller{UserID: "u3", Username: "BOB"}, true},
		{"global admin", &domain.Caller{UserID: "u4", Username: "platform-op"}, true},
		{"regular visitor", &domain.Caller{UserID: "u5", Username: "mallory"}, false},
		{"no username", &domain.Caller{UserID: "u6"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, svc.IsAdmin(context.Background(), "biz_1", tc.caller))
		})
	}
}

func TestSettingsService_ServiceReady(t *testing.T) {
	svc, _ := newSettingsServiceForTest(newFakeSettingsRepository(), ServiceConfig{})
	assert.True(t, svc.ServiceReady())

	assert.False(t, (&SettingsService{}).ServiceReady())
}
