// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/service"
)

// SettingsHandlers serves the tenant settings endpoints.
type SettingsHandlers struct {
	SettingsService *service.SettingsService
	Gate            domain.AccessGate
}

// NewSettingsHandlers creates settings handlers.
func NewSettingsHandlers(settingsService *service.SettingsService, gate domain.AccessGate) *SettingsHandlers {
	return &SettingsHandlers{
		SettingsService: settingsService,
		Gate:            gate,
	}
}

// Register wires the settings routes onto the router.
func (h *SettingsHandlers) Register(r gin.IRouter) {
	r.GET("/settings/:tenantId", h.GetSettings)
	r.POST("/settings/:tenantId", h.SaveSettings)
	r.DELETE("/settings/:tenantId", h.DeleteSettings)
}

// GetSettingsResponse is the masked settings view returned to admins.
type GetSettingsResponse struct {
	Configured  bool                      `json:"configured"`
	Credentials *models.MaskedCredentials `json:"credentials,omitempty"`
}

// GetSettings returns whether the tenant is configured plus a masked view of
// its credentials. Secrets never appear in the response.
func (h *SettingsHandlers) GetSettings(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}
	if !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not view tenant settings"))
		return
	}

	settings := h.SettingsService.GetSettings(c.Request.Context(), tenantID)
	if settings == nil {
		c.JSON(http.StatusOK, GetSettingsResponse{Configured: false})
		return
	}

	masked := settings.Masked()
	c.JSON(http.StatusOK, GetSettingsResponse{
		Configured:  settings.Configured(),
		Credentials: &masked,
	})
}

// SaveSettingsRequest is the merge-save payload for tenant settings. Empty
// fields keep their stored values.
type SaveSettingsRequest struct {
	AccountID           string   `json:"accountId"`
	ClientID            string   `json:"clientId"`
	ClientSecret        string   `json:"clientSecret"`
	SDKKey              string   `json:"sdkKey"`
	SDKSecret           string   `json:"sdkSecret"`
	WebhookSecret       string   `json:"webhookSecret"`
	FixedMeetingID      string   `json:"fixedMeetingId"`
	DefaultMeetingTitle string   `json:"defaultMeetingTitle"`
	BrandColor          string   `json:"brandColor"`
	StartTitle          string   `json:"startNotificationTitle"`
	StartBody           string   `json:"startNotificationBody"`
	EndTitle            string   `json:"endNotificationTitle"`
	EndBody             string   `json:"endNotificationBody"`
	AdminUsernames      []string `json:"adminUsernames"`
	SkipValidation      bool     `json:"skipValidation"`
}

// SaveSettingsResponse reports the outcome of a settings save.
type SaveSettingsResponse struct {
	Saved       bool                      `json:"saved"`
	Configured  bool                      `json:"configured"`
	Credentials *models.MaskedCredentials `json:"credentials,omitempty"`
}

// SaveSettings merge-saves tenant settings, validating changed credentials
// against the provider unless skipValidation is set.
func (h *SettingsHandlers) SaveSettings(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}
	if !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not change tenant settings"))
		return
	}

	var req SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	incoming := &models.TenantSettings{
		AccountID:           req.AccountID,
		ClientID:            req.ClientID,
		ClientSecret:        req.ClientSecret,
		SDKKey:              req.SDKKey,
		SDKSecret:           req.SDKSecret,
		WebhookSecret:       req.WebhookSecret,
		FixedMeetingID:      req.FixedMeetingID,
		DefaultMeetingTitle: req.DefaultMeetingTitle,
		BrandColor:          req.BrandColor,
		StartTemplate:       models.NotificationTemplate{Title: req.StartTitle, Body: req.StartBody},
		EndTemplate:         models.NotificationTemplate{Title: req.EndTitle, Body: req.EndBody},
		AdminUsernames:      req.AdminUsernames,
	}

	merged, err := h.SettingsService.SaveSettings(c.Request.Context(), tenantID, incoming, req.SkipValidation)
	if err != nil {
		writeError(c, err)
		return
	}

	masked := merged.Masked()
	c.JSON(http.StatusOK, SaveSettingsResponse{
		Saved:       true,
		Configured:  merged.Configured(),
		Credentials: &masked,
	})
}

// DeleteSettings offboards a tenant, removing its stored settings.
func (h *SettingsHandlers) DeleteSettings(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}
	if !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not delete tenant settings"))
		return
	}

	if err := h.SettingsService.DeleteSettings(c.Request.Context(), tenantID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
