// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package domain

import "net/http"

// Caller is the storefront identity attached to an incoming request.
type Caller struct {
	UserID   string
	Username string
	// Owner is true when the storefront platform marks the caller as the
	// tenant owner, independent of the tenant admin list.
	Owner bool
}

// AccessGate resolves the caller identity for a request from the storefront
// platform. Implementations are opaque to the rest of the gateway.
type AccessGate interface {
	ResolveCaller(r *http.Request, tenantID string) (*Caller, error)
}
