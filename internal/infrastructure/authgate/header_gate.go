// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package authgate resolves storefront caller identity for incoming requests.
package authgate

import (
	"net/http"
	"strings"

	"github.com/storely/meetgate/internal/domain"
)

// Headers set by the storefront platform proxy in front of the gateway.
const (
	HeaderUserID   = "X-Storefront-User-Id"
	HeaderUsername = "X-Storefront-Username"
	HeaderRole     = "X-Storefront-Role"
)

// RoleOwner marks the tenant owner in the role header.
const RoleOwner = "owner"

// HeaderGate resolves caller identity from storefront platform headers. The
// platform terminates authentication upstream; the gateway only reads the
// identity it forwards.
type HeaderGate struct{}

// Ensure HeaderGate implements AccessGate
var _ domain.AccessGate = (*HeaderGate)(nil)

// NewHeaderGate creates a header-based access gate.
func NewHeaderGate() *HeaderGate {
	return &HeaderGate{}
}

// ResolveCaller reads the caller identity from the request headers.
func (g *HeaderGate) ResolveCaller(r *http.Request, _ string) (*domain.Caller, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return nil, domain.NewUnauthorizedError("missing storefront identity")
	}

	return &domain.Caller{
		UserID:   userID,
		Username: strings.TrimSpace(r.Header.Get(HeaderUsername)),
		Owner:    strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderRole)), RoleOwner),
	}, nil
}
