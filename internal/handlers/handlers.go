// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package handlers contains the HTTP handlers for the meeting gateway.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/meetgate/internal/domain"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps a domain error to an HTTP status and writes the response.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	}

	var credErr *domain.CredentialsInvalidError
	if errors.As(err, &credErr) {
		status = http.StatusBadRequest
	}

	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// resolveCaller reads the storefront identity for a request, writing a 401
// when it is absent.
func resolveCaller(c *gin.Context, gate domain.AccessGate, tenantID string) (*domain.Caller, bool) {
	caller, err := gate.ResolveCaller(c.Request, tenantID)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return caller, true
}
