// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package models

import "encoding/json"

// Webhook event types the gateway acts on.
const (
	WebhookEventURLValidation  = "endpoint.url_validation"
	WebhookEventMeetingStarted = "meeting.started"
	WebhookEventMeetingEnded   = "meeting.ended"
)

// WebhookEnvelope is the outer shape shared by all provider webhook events.
type WebhookEnvelope struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// WebhookValidationPayload is the payload of an endpoint.url_validation event.
type WebhookValidationPayload struct {
	PlainToken string `json:"plainToken"`
}

// WebhookValidationResponse answers the url_validation challenge.
type WebhookValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// WebhookMeetingPayload is the payload of meeting lifecycle events. The
// provider scopes it with the account id of the tenant that owns the meeting.
type WebhookMeetingPayload struct {
	AccountID string              `json:"account_id"`
	Object    WebhookMeetingEvent `json:"object"`
}

// WebhookMeetingEvent describes the meeting a lifecycle event refers to.
type WebhookMeetingEvent struct {
	ID        json.Number `json:"id"`
	UUID      string      `json:"uuid,omitempty"`
	HostID    string      `json:"host_id,omitempty"`
	Topic     string      `json:"topic,omitempty"`
	Type      int         `json:"type,omitempty"`
	StartTime string      `json:"start_time,omitempty"`
	EndTime   string      `json:"end_time,omitempty"`
	Timezone  string      `json:"timezone,omitempty"`
	Password  string      `json:"password,omitempty"`
}
