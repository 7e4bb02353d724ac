// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package models contains the domain models for the meeting gateway.
package models

import (
	"strings"
	"time"
)

// maskVisible is how many characters remain visible at each end of a masked
// identifier.
const maskVisible = 4

// NotificationTemplate is the push-notification copy a tenant customizes for
// meeting lifecycle announcements.
type NotificationTemplate struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// TenantSettings is the per-tenant configuration record: provider credentials,
// meeting SDK key pair, and storefront presentation knobs.
type TenantSettings struct {
	TenantID            string               `json:"tenant_id"`
	AccountID           string               `json:"account_id,omitempty"`
	ClientID            string               `json:"client_id,omitempty"`
	ClientSecret        string               `json:"client_secret,omitempty"`
	SDKKey              string               `json:"sdk_key,omitempty"`
	SDKSecret           string               `json:"sdk_secret,omitempty"`
	WebhookSecret       string               `json:"webhook_secret,omitempty"`
	FixedMeetingID      string               `json:"fixed_meeting_id,omitempty"`
	DefaultMeetingTitle string               `json:"default_meeting_title,omitempty"`
	BrandColor          string               `json:"brand_color,omitempty"`
	StartTemplate       NotificationTemplate `json:"start_template,omitempty"`
	EndTemplate         NotificationTemplate `json:"end_template,omitempty"`
	AdminUsernames      []string             `json:"admin_usernames,omitempty"`
	CreatedAt           *time.Time           `json:"created_at,omitempty"`
	UpdatedAt           *time.Time           `json:"updated_at,omitempty"`
}

// Configured reports whether the tenant has a complete credential set: the
// server-to-server triple plus the SDK key pair.
func (s *TenantSettings) Configured() bool {
	if s == nil {
		return false
	}
	return s.AccountID != "" && s.ClientID != "" && s.ClientSecret != "" &&
		s.SDKKey != "" && s.SDKSecret != ""
}

// Merge overlays the non-empty fields of incoming onto the receiver and
// returns the result. Empty incoming fields keep the stored value, so partial
// saves never wipe previously stored credentials.
func (s *TenantSettings) Merge(incoming *TenantSettings) *TenantSettings {
	merged := *s
	if incoming == nil {
		return &merged
	}
	if incoming.AccountID != "" {
		merged.AccountID = incoming.AccountID
	}
	if incoming.ClientID != "" {
		merged.ClientID = incoming.ClientID
	}
	if incoming.ClientSecret != "" {
		merged.ClientSecret = incoming.ClientSecret
	}
	if incoming.SDKKey != "" {
		merged.SDKKey = incoming.SDKKey
	}
	if incoming.SDKSecret != "" {
		merged.SDKSecret = incoming.SDKSecret
	}
	if incoming.WebhookSecret != "" {
		merged.WebhookSecret = incoming.WebhookSecret
	}
	if incoming.FixedMeetingID != "" {
		merged.FixedMeetingID = incoming.FixedMeetingID
	}
	if incoming.DefaultMeetingTitle != "" {
		merged.DefaultMeetingTitle = incoming.DefaultMeetingTitle
	}
	if incoming.BrandColor != "" {
		merged.BrandColor = incoming.BrandColor
	}
	if incoming.StartTemplate.Title != "" {
		merged.StartTemplate.Title = incoming.StartTemplate.Title
	}
	if incoming.StartTemplate.Body != "" {
		merged.StartTemplate.Body = incoming.StartTemplate.Body
	}
	if incoming.EndTemplate.Title != "" {
		merged.EndTemplate.Title = incoming.EndTemplate.Title
	}
	if incoming.EndTemplate.Body != "" {
		merged.EndTemplate.Body = incoming.EndTemplate.Body
	}
	if incoming.AdminUsernames != nil {
		merged.AdminUsernames = incoming.AdminUsernames
	}
	return &merged
}

// MaskString keeps the first and last four characters of an identifier
// visible. Values too short to reveal anything are fully masked.
func MaskString(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= maskVisible*2 {
		return strings.Repeat("•", 12)
	}
	return value[:maskVisible] + "••••" + value[len(value)-maskVisible:]
}

// MaskedCredentials is the read view of tenant credentials: identifiers are
// partially masked, secrets never leave the store.
type MaskedCredentials struct {
	AccountID           string `json:"accountId"`
	ClientID            string `json:"clientId"`
	ClientSecret        string `json:"clientSecret"`
	SDKKey              string `json:"sdkKey"`
	SDKSecret           string `json:"sdkSecret"`
	WebhookSecret       string `json:"webhookSecret"`
	FixedMeetingID      string `json:"fixedMeetingId,omitempty"`
	DefaultMeetingTitle string `json:"defaultMeetingTitle,omitempty"`
	BrandColor          string `json:"brandColor,omitempty"`
}

// Masked returns the externally safe view of the settings. Secrets are always
// fully masked regardless of length.
func (s *TenantSettings) Masked() MaskedCredentials {
	masked := MaskedCredentials{
		AccountID:           MaskString(s.AccountID),
		ClientID:            MaskString(s.ClientID),
		SDKKey:              MaskString(s.SDKKey),
		FixedMeetingID:      s.FixedMeetingID,
		DefaultMeetingTitle: s.DefaultMeetingTitle,
		BrandColor:          s.BrandColor,
	}
	if s.ClientSecret != "" {
		masked.ClientSecret = strings.Repeat("•", 12)
	}
	if s.SDKSecret != "" {
		masked.SDKSecret = strings.Repeat("•", 12)
	}
	if s.WebhookSecret != "" {
		masked.WebhookSecret = strings.Repeat("•", 12)
	}
	return masked
}

// IsAdminUsername reports whether username appears in the tenant admin list,
// case-insensitively.
func (s *TenantSettings) IsAdminUsername(username string) bool {
	if s == nil || username == "" {
		return false
	}
	for _, admin := range s.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(admin), username) {
			return true
		}
	}
	return false
}

// Tags generates a set of log attributes for the settings record.
func (s *TenantSettings) Tags() []string {
	tags := []string{}
	if s == nil {
		return tags
	}
	if s.TenantID != "" {
		tags = append(tags, "tenant_id:"+s.TenantID)
	}
	if s.AccountID != "" {
		tags = append(tags, "account_id:"+MaskString(s.AccountID))
	}
	return tags
}
