// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
)

func TestNatsTenantSettingsRepository_SaveAndGet(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	settings := &models.TenantSettings{
		TenantID:      "biz_1",
		AccountID:     "acct-1",
		ClientID:      "client-1",
		ClientSecret:  "secret-1",
		WebhookSecret: "whsec-1",
	}
	require.NoError(t, repo.Save(context.Background(), settings))
	assert.NotNil(t, settings.CreatedAt)
	assert.NotNil(t, settings.UpdatedAt)

	got, err := repo.Get(context.Background(), "biz_1")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", got.AccountID)
	assert.Equal(t, "secret-1", got.ClientSecret)
}

func TestNatsTenantSettingsRepository_SavePreservesCreatedAt(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	settings := &models.TenantSettings{TenantID: "biz_1", AccountID: "acct-1"}
	require.NoError(t, repo.Save(context.Background(), settings))
	created := *settings.CreatedAt

	got, err := repo.Get(context.Background(), "biz_1")
	require.NoError(t, err)
	got.ClientID = "client-1"
	require.NoError(t, repo.Save(context.Background(), got))

	again, err := repo.Get(context.Background(), "biz_1")
	require.NoError(t, err)
	require.NotNil(t, again.CreatedAt)
	assert.True(t, again.CreatedAt.Equal(created), "resaving must not reset CreatedAt")
}

func TestNatsTenantSettingsRepository_Exists(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	exists, err := repo.Exists(context.Background(), repo.entityKey("biz_1"))
	require.NoError(t, err)
	assert.False(t, exists, "existence check before the first save must report a miss")

	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{TenantID: "biz_1", AccountID: "acct-1"}))

	exists, err = repo.Exists(context.Background(), repo.entityKey("biz_1"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNatsTenantSettingsRepository_GetMissing(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	_, err := repo.Get(context.Background(), "biz_1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsTenantSettingsRepository_Validation(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	_, err := repo.Get(context.Background(), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	err = repo.Save(context.Background(), &models.TenantSettings{})
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	err = repo.Delete(context.Background(), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))

	_, err = repo.GetByAccountID(context.Background(), "")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestNatsTenantSettingsRepository_GetByAccountID(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{
		TenantID:  "biz_1",
		AccountID: "acct-1",
	}))
	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{
		TenantID:  "biz_2",
		AccountID: "acct-2",
	}))

	got, err := repo.GetByAccountID(context.Background(), "acct-2")
	require.NoError(t, err)
	assert.Equal(t, "biz_2", got.TenantID)

	_, err = repo.GetByAccountID(context.Background(), "acct-9")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsTenantSettingsRepository_DeleteRemovesIndex(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{
		TenantID:  "biz_1",
		AccountID: "acct-1",
	}))
	require.NoError(t, repo.Delete(context.Background(), "biz_1"))

	_, err := repo.Get(context.Background(), "biz_1")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))

	_, err = repo.GetByAccountID(context.Background(), "acct-1")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err), "the account index entry must be gone too")
}

func TestNatsTenantSettingsRepository_DeleteMissing(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	err := repo.Delete(context.Background(), "biz_1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestNatsTenantSettingsRepository_ListWebhookSecrets(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{
		TenantID:      "biz_1",
		AccountID:     "acct-1",
		WebhookSecret: "whsec-1",
	}))
	// Tenant without a webhook secret is skipped; its index entry must not
	// confuse the listing either.
	require.NoError(t, repo.Save(context.Background(), &models.TenantSettings{
		TenantID:  "biz_2",
		AccountID: "acct-2",
	}))

	secrets, err := repo.ListWebhookSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"whsec-1"}, secrets)
}

func TestNatsTenantSettingsRepository_ListWebhookSecretsEmpty(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(newMockNatsKeyValue())

	secrets, err := repo.ListWebhookSecrets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, secrets)
}

func TestNatsTenantSettingsRepository_NotReady(t *testing.T) {
	repo := NewNatsTenantSettingsRepository(nil)

	_, err := repo.Get(context.Background(), "biz_1")
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
