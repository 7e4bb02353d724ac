// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/pkg/utils"
)

// NatsTenantSettingsRepository is the NATS KV store repository for tenant settings.
type NatsTenantSettingsRepository struct {
	*NatsBaseRepository[models.TenantSettings]
	keyBuilder *KeyBuilder
}

// NewNatsTenantSettingsRepository creates a new NATS KV store repository for tenant settings.
func NewNatsTenantSettingsRepository(kvStore INatsKeyValue) *NatsTenantSettingsRepository {
	baseRepo := NewNatsBaseRepository[models.TenantSettings](kvStore, "tenant settings")

	return &NatsTenantSettingsRepository{
		NatsBaseRepository: baseRepo,
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsTenantSettingsRepository) entityKey(tenantID string) string {
	return r.keyBuilder.EntityKeyEncoded(KeyPrefixSettings, tenantID)
}

func (r *NatsTenantSettingsRepository) accountIndexKey(accountID string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexAccount, accountID)
}

// Get retrieves the settings record for a tenant.
func (r *NatsTenantSettingsRepository) Get(ctx context.Context, tenantID string) (*models.TenantSettings, error) {
	if tenantID == "" {
		return nil, domain.NewValidationError("tenant ID is required")
	}

	return r.NatsBaseRepository.Get(ctx, r.entityKey(tenantID))
}

// Save writes the full settings record and maintains the account-id index so
// that webhook events can be mapped back to a tenant.
func (r *NatsTenantSettingsRepository) Save(ctx context.Context, settings *models.TenantSettings) error {
	if settings == nil || settings.TenantID == "" {
		return domain.NewValidationError("tenant ID is required")
	}

	now := time.Now().UTC()
	firstSave := false
	if settings.CreatedAt == nil {
		// A missing CreatedAt usually means onboarding, but merge callers may
		// strip timestamps; confirm against the store before treating it as new.
		exists, err := r.Exists(ctx, r.entityKey(settings.TenantID))
		if err != nil {
			return err
		}
		firstSave = !exists
		settings.CreatedAt = utils.TimePtr(now)
	}
	settings.UpdatedAt = utils.TimePtr(now)

	if err := r.NatsBaseRepository.Put(ctx, r.entityKey(settings.TenantID), settings); err != nil {
		return err
	}

	if firstSave {
		slog.InfoContext(ctx, "tenant settings created", "tenant_id", settings.TenantID)
	}

	if settings.AccountID != "" {
		if err := r.PutIndex(ctx, r.accountIndexKey(settings.AccountID), settings.TenantID); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the settings record and its account index entry.
func (r *NatsTenantSettingsRepository) Delete(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return domain.NewValidationError("tenant ID is required")
	}

	settings, err := r.NatsBaseRepository.Get(ctx, r.entityKey(tenantID))
	if err != nil {
		return err
	}

	if err := r.NatsBaseRepository.Delete(ctx, r.entityKey(tenantID)); err != nil {
		return err
	}

	if settings.AccountID != "" {
		// Index cleanup is best-effort; a dangling index entry only costs an
		// extra lookup miss.
		_ = r.DeleteIndex(ctx, r.accountIndexKey(settings.AccountID))
	}

	return nil
}

// GetByAccountID resolves a provider account id to the owning tenant's settings.
func (r *NatsTenantSettingsRepository) GetByAccountID(ctx context.Context, accountID string) (*models.TenantSettings, error) {
	if accountID == "" {
		return nil, domain.NewValidationError("account ID is required")
	}

	tenantID, err := r.GetIndex(ctx, r.accountIndexKey(accountID))
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, tenantID)
}

// ListWebhookSecrets returns every stored webhook secret. The url_validation
// challenge payload carries no account id, so the caller answers it with any
// secret it can find.
func (r *NatsTenantSettingsRepository) ListWebhookSecrets(ctx context.Context) ([]string, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var secrets []string
	for _, encodedKey := range keys {
		decodedKey, err := r.keyBuilder.DecodeKey(encodedKey)
		if err != nil {
			continue
		}
		if !isSettingsKey(decodedKey) {
			continue
		}

		settings, err := r.NatsBaseRepository.Get(ctx, encodedKey)
		if err != nil {
			continue
		}
		if settings.WebhookSecret != "" {
			secrets = append(secrets, settings.WebhookSecret)
		}
	}

	return secrets, nil
}

func isSettingsKey(decodedKey string) bool {
	return len(decodedKey) > len("/"+KeyPrefixSettings+"/") &&
		decodedKey[:len("/"+KeyPrefixSettings+"/")] == "/"+KeyPrefixSettings+"/"
}
