// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package service contains the business logic of the meeting gateway.
package service

import (
	"time"

	"github.com/storely/meetgate/internal/domain/models"
)

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// GlobalAdminUsernames is the operator-level admin allow-list applied to
	// every tenant, on top of each tenant's own admin list.
	GlobalAdminUsernames []string
	// FallbackSettings carries single-tenant credentials from the environment,
	// used when a tenant has no stored settings. Nil in multi-tenant installs.
	FallbackSettings *models.TenantSettings
	// EndedSuppressionWindow is how long after a meeting.ended record the
	// resolver reports no live meeting without consulting the provider.
	EndedSuppressionWindow time.Duration
}

// DefaultEndedSuppressionWindow is used when no window is configured.
const DefaultEndedSuppressionWindow = 60 * time.Second
