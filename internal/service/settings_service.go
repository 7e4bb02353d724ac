// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/pkg/cache"
)

// CredentialBroker is the slice of the token broker the settings service
// needs: validating a candidate credential set and dropping cached tokens
// when credentials change.
type CredentialBroker interface {
	ValidateCredentials(ctx context.Context, settings *models.TenantSettings) error
	Invalidate(tenantID string)
}

// SettingsService manages per-tenant settings: reads through a short TTL
// cache, merges partial saves, and keeps the token broker in sync with
// credential changes.
type SettingsService struct {
	SettingsRepository domain.SettingsRepository
	Broker             CredentialBroker
	Cache              *cache.TTLCache[*models.TenantSettings]
	Config             ServiceConfig
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(
	settingsRepository domain.SettingsRepository,
	settingsCache *cache.TTLCache[*models.TenantSettings],
	config ServiceConfig,
) *SettingsService {
	return &SettingsService{
		SettingsRepository: settingsRepository,
		Cache:              settingsCache,
		Config:             config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SettingsService) ServiceReady() bool {
	return s.SettingsRepository != nil && s.Cache != nil
}

// GetSettings returns the settings for a tenant, or nil when none exist. The
// read path degrades: a store failure is logged and treated as a miss so one
// flaky lookup never breaks a storefront page.
func (s *SettingsService) GetSettings(ctx context.Context, tenantID string) *models.TenantSettings {
	if tenantID == "" {
		return nil
	}

	if cached, ok := s.Cache.Get(tenantID); ok {
		return cached
	}

	settings, err := s.SettingsRepository.Get(ctx, tenantID)
	if err != nil {
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "failed to read tenant settings, treating as absent",
				logging.ErrKey, err, "tenant_id", tenantID)
		}
		settings = nil
	}

	if settings == nil && s.Config.FallbackSettings != nil {
		fallback := *s.Config.FallbackSettings
		fallback.TenantID = tenantID
		settings = &fallback
	}

	if settings != nil {
		s.Cache.Set(tenantID, settings)
	}

	return settings
}

// Credentials implements the token broker's credential source.
func (s *SettingsService) Credentials(ctx context.Context, tenantID string) (*models.TenantSettings, error) {
	settings := s.GetSettings(ctx, tenantID)
	if settings == nil {
		return nil, domain.NewCredentialsMissingError(tenantID)
	}
	return settings, nil
}

// SaveSettings merges the incoming partial settings onto the stored record
// and persists the result. Unless skipValidation is set and the credential
// triple changed, the merged credentials are validated against the provider
// first. Returns the merged record.
func (s *SettingsService) SaveSettings(ctx context.Context, tenantID string, incoming *models.TenantSettings, skipValidation bool) (*models.TenantSettings, error) {
	if tenantID == "" {
		return nil, domain.NewValidationError("tenant ID is required")
	}

	current := s.GetSettings(ctx, tenantID)
	if current == nil {
		current = &models.TenantSettings{TenantID: tenantID}
	}

	merged := current.Merge(incoming)
	merged.TenantID = tenantID

	credentialsChanged := merged.AccountID != current.AccountID ||
		merged.ClientID != current.ClientID ||
		merged.ClientSecret != current.ClientSecret

	if credentialsChanged && !skipValidation && s.Broker != nil {
		if err := s.Broker.ValidateCredentials(ctx, merged); err != nil {
			return nil, err
		}
	}

	if err := s.SettingsRepository.Save(ctx, merged); err != nil {
		slog.ErrorContext(ctx, "failed to save tenant settings",
			logging.ErrKey, err, "tenant_id", tenantID)
		return nil, err
	}

	s.Cache.Delete(tenantID)
	if s.Broker != nil {
		s.Broker.Invalidate(tenantID)
	}

	slog.InfoContext(ctx, "tenant settings saved",
		"tenant_id", tenantID, "credentials_changed", credentialsChanged)

	return merged, nil
}

// DeleteSettings removes a tenant's settings and every cached derivative.
func (s *SettingsService) DeleteSettings(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return domain.NewValidationError("tenant ID is required")
	}

	if err := s.SettingsRepository.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.Cache.Delete(tenantID)
	if s.Broker != nil {
		s.Broker.Invalidate(tenantID)
	}

	slog.InfoContext(ctx, "tenant settings deleted", "tenant_id", tenantID)
	return nil
}

// ValidateCredentials checks a candidate credential set against the provider
// without persisting anything.
func (s *SettingsService) ValidateCredentials(ctx context.Context, settings *models.TenantSettings) error {
	if s.Broker == nil {
		return domain.NewUnavailableError("credential validation is not available")
	}
	return s.Broker.ValidateCredentials(ctx, settings)
}

// IsAdmin reports whether the caller may manage the tenant. Owners always
// may; otherwise the username is checked case-insensitively against the
// tenant's admin list and the global allow-list.
func (s *SettingsService) IsAdmin(ctx context.Context, tenantID string, caller *domain.Caller) bool {
	if caller == nil {
		return false
	}
	if caller.Owner {
		return true
	}
	if caller.Username == "" {
		return false
	}

	settings := s.GetSettings(ctx, tenantID)
	if settings.IsAdminUsername(caller.Username) {
		return true
	}

	for _, admin := range s.Config.GlobalAdminUsernames {
		if strings.EqualFold(strings.TrimSpace(admin), caller.Username) {
			return true
		}
	}

	return false
}
