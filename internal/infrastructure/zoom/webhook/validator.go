// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package webhook validates Zoom webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// VerificationMode records how a webhook delivery was (or was not) verified.
// Deliveries for tenants without a stored secret are processed unverified
// rather than dropped, but the distinction is kept visible end to end.
type VerificationMode string

const (
	VerificationModeVerified   VerificationMode = "verified"
	VerificationModeUnverified VerificationMode = "unverified"
	VerificationModeRejected   VerificationMode = "rejected"
)

// Validator checks Zoom webhook signatures. It is stateless: the secret is
// supplied per call because each tenant stores its own.
type Validator struct{}

// NewValidator creates a webhook validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSignature checks the v0 signature of a webhook delivery against the
// given secret. The signed message is "v0:<timestamp>:<raw body>".
func (v *Validator) ValidateSignature(secret string, body []byte, signature, timestamp string) error {
	if secret == "" {
		return fmt.Errorf("webhook secret token not configured")
	}
	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}
	if timestamp == "" {
		return fmt.Errorf("missing webhook timestamp")
	}

	message := fmt.Sprintf("v0:%s:%s", timestamp, body)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	expectedSignature := "v0=" + hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return fmt.Errorf("webhook signature does not match expected signature")
	}

	return nil
}

// EncryptToken answers the endpoint.url_validation challenge: the hex HMAC of
// the plain token under the webhook secret.
func (v *Validator) EncryptToken(secret, plainToken string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(plainToken))
	return hex.EncodeToString(h.Sum(nil))
}

// IsValidEvent checks if the event type is one the gateway acts on.
func (v *Validator) IsValidEvent(eventType string) bool {
	validEvents := map[string]bool{
		"meeting.started":         true,
		"meeting.ended":           true,
		"endpoint.url_validation": true,
	}

	return validEvents[eventType]
}
