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

// MeetingHandlers serves the meeting lifecycle, live status and join token
// endpoints.
type MeetingHandlers struct {
	SettingsService   *service.SettingsService
	MeetingService    *service.MeetingService
	LiveStatusService *service.LiveStatusService
	SignatureService  *service.SignatureService
	Gate              domain.AccessGate
}

// NewMeetingHandlers creates meeting handlers.
func NewMeetingHandlers(
	settingsService *service.SettingsService,
	meetingService *service.MeetingService,
	liveStatusService *service.LiveStatusService,
	signatureService *service.SignatureService,
	gate domain.AccessGate,
) *MeetingHandlers {
	return &MeetingHandlers{
		SettingsService:   settingsService,
		MeetingService:    meetingService,
		LiveStatusService: liveStatusService,
		SignatureService:  signatureService,
		Gate:              gate,
	}
}

// Register wires the meeting routes onto the router.
func (h *MeetingHandlers) Register(r gin.IRouter) {
	r.POST("/meetings/:tenantId", h.CreateMeeting)
	r.POST("/meetings/:tenantId/end", h.EndMeeting)
	r.GET("/meetings/:tenantId/live", h.GetLiveMeeting)
	r.POST("/join-token/:tenantId", h.GenerateJoinToken)
}

// CreateMeetingRequest is the payload for creating an instant meeting.
type CreateMeetingRequest struct {
	Topic string `json:"topic"`
}

// CreateMeetingResponse describes the meeting created for the storefront.
type CreateMeetingResponse struct {
	MeetingNumber string `json:"meetingNumber"`
	Topic         string `json:"topic"`
	Password      string `json:"password,omitempty"`
	JoinURL       string `json:"joinUrl,omitempty"`
	StartURL      string `json:"startUrl,omitempty"`
}

// CreateMeeting creates an instant meeting for the tenant. Admin only.
func (h *MeetingHandlers) CreateMeeting(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}
	if !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not create meetings"))
		return
	}

	var req CreateMeetingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, domain.NewValidationError("invalid request body", err))
			return
		}
	}

	meeting, err := h.MeetingService.CreateInstantMeeting(c.Request.Context(), tenantID, req.Topic)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateMeetingResponse{
		MeetingNumber: meeting.ID,
		Topic:         meeting.Topic,
		Password:      meeting.Password,
		JoinURL:       meeting.JoinURL,
		StartURL:      meeting.StartURL,
	})
}

// EndMeetingRequest names the meeting to end.
type EndMeetingRequest struct {
	MeetingNumber string `json:"meetingNumber"`
}

// EndMeeting stops a running meeting. Admin only, idempotent.
func (h *MeetingHandlers) EndMeeting(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}
	if !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not end meetings"))
		return
	}

	var req EndMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	if err := h.MeetingService.EndMeeting(c.Request.Context(), tenantID, service.NormalizeMeetingNumber(req.MeetingNumber)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ended": true})
}

// LiveMeetingResponse answers the storefront live poll.
type LiveMeetingResponse struct {
	Live    bool                `json:"live"`
	Source  string              `json:"source,omitempty"`
	Meeting *models.LiveMeeting `json:"meeting,omitempty"`
}

// GetLiveMeeting resolves whether the tenant has a live meeting right now.
// Available to any storefront visitor with an identity.
func (h *MeetingHandlers) GetLiveMeeting(c *gin.Context) {
	tenantID := c.Param("tenantId")
	if _, ok := resolveCaller(c, h.Gate, tenantID); !ok {
		return
	}

	meeting, source, err := h.LiveStatusService.GetLiveMeeting(c.Request.Context(), tenantID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LiveMeetingResponse{
		Live:    meeting != nil,
		Source:  source,
		Meeting: meeting,
	})
}

// JoinTokenRequest asks for a signed meeting SDK token.
type JoinTokenRequest struct {
	MeetingNumber string `json:"meetingNumber"`
	Role          int    `json:"role"`
}

// JoinTokenResponse carries the signed token and the SDK key the embed needs.
type JoinTokenResponse struct {
	Token  string `json:"token"`
	SDKKey string `json:"sdkKey"`
}

// GenerateJoinToken issues a join token for the given meeting number. Host
// tokens (role 1) are restricted to tenant admins.
func (h *MeetingHandlers) GenerateJoinToken(c *gin.Context) {
	tenantID := c.Param("tenantId")
	caller, ok := resolveCaller(c, h.Gate, tenantID)
	if !ok {
		return
	}

	var req JoinTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewValidationError("invalid request body", err))
		return
	}

	if req.Role == service.JoinRoleHost && !h.SettingsService.IsAdmin(c.Request.Context(), tenantID, caller) {
		writeError(c, domain.NewUnauthorizedError("caller may not join as host"))
		return
	}

	token, err := h.SignatureService.GenerateJoinToken(c.Request.Context(), tenantID, req.MeetingNumber, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, JoinTokenResponse{Token: token.Token, SDKKey: token.SDKKey})
}
