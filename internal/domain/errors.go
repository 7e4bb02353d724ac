// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation   ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeUnauthorized                  // Authentication/verification failures (401 Unauthorized)
	ErrorTypeNotFound                      // Resource not found errors (404 Not Found)
	ErrorTypeConflict                      // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                      // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                   // Service unavailable errors (503 Service Unavailable)
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

// Credential and provider error classes used across the gateway.

// CredentialReason distinguishes why a credential validation attempt failed.
type CredentialReason string

const (
	// CredentialReasonMalformed means the provider rejected the request shape
	// itself, typically a missing or garbled account id.
	CredentialReasonMalformed CredentialReason = "malformed"
	// CredentialReasonInvalidClient means the client id/secret pair was refused.
	CredentialReasonInvalidClient CredentialReason = "invalid_client"
	// CredentialReasonUnknown covers every other provider rejection.
	CredentialReasonUnknown CredentialReason = "unknown"
)

// NewCredentialsMissingError indicates no usable credentials exist for a tenant.
func NewCredentialsMissingError(tenantID string) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: "no provider credentials configured for tenant " + tenantID}
}

// CredentialsInvalidError carries the provider-side reason a credential set
// was rejected during validation.
type CredentialsInvalidError struct {
	Reason CredentialReason
	Detail string
}

func (e *CredentialsInvalidError) Error() string {
	if e.Detail != "" {
		return "credentials rejected (" + string(e.Reason) + "): " + e.Detail
	}
	return "credentials rejected (" + string(e.Reason) + ")"
}

// NewTokenExchangeError indicates the provider token endpoint refused or
// failed an exchange for already-stored credentials.
func NewTokenExchangeError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

// NewSdkNotConfiguredError indicates the tenant has no meeting SDK key pair,
// so join signatures cannot be issued.
func NewSdkNotConfiguredError(tenantID string) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: "meeting SDK key pair not configured for tenant " + tenantID}
}
