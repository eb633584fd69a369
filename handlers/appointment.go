package handlers

import (
	"context"
	"net/http"

	"pawcare/middleware"
	"pawcare/models"
	"pawcare/services/scheduling"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the booking and lifecycle endpoints.
type AppointmentHandler struct {
	Booking   scheduling.BookingService
	Lifecycle scheduling.LifecycleService
	Logger    *zap.Logger
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(booking scheduling.BookingService, lifecycle scheduling.LifecycleService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Booking: booking, Lifecycle: lifecycle, Logger: logger}
}

// CreateAppointmentHandler creates a pending appointment plus its checkout
// session and returns the redirect URL.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	kind, err := models.ParseProviderKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req scheduling.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
		return
	}

	redirect, err := h.Booking.CreateAppointment(c.Request.Context(), actor, kind, c.Param("providerId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redirect)
}

// ConfirmAppointmentHandler is the client-driven confirmation path.
func (h *AppointmentHandler) ConfirmAppointmentHandler(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	result, err := h.Booking.ConfirmBySession(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"alreadyConfirmed": result.AlreadyConfirmed,
		"appointment":      result.Appointment,
	})
}

func (h *AppointmentHandler) StartHandler(c *gin.Context) {
	h.lifecycleTransition(c, h.Lifecycle.Start)
}

func (h *AppointmentHandler) CheckInHandler(c *gin.Context) {
	h.lifecycleTransition(c, h.Lifecycle.CheckIn)
}

func (h *AppointmentHandler) CheckOutHandler(c *gin.Context) {
	h.lifecycleTransition(c, h.Lifecycle.CheckOut)
}

func (h *AppointmentHandler) CompleteHandler(c *gin.Context) {
	h.lifecycleTransition(c, h.Lifecycle.Complete)
}

func (h *AppointmentHandler) CancelHandler(c *gin.Context) {
	h.lifecycleTransition(c, h.Lifecycle.Cancel)
}

type transitionFn func(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error)

func (h *AppointmentHandler) lifecycleTransition(c *gin.Context, fn transitionFn) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	appt, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
}

// GetAppointmentHandler returns one appointment to its owner or provider.
func (h *AppointmentHandler) GetAppointmentHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	appt, err := h.Lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// GetUserAppointmentsHandler lists the acting user's paid appointments
// across all provider kinds.
func (h *AppointmentHandler) GetUserAppointmentsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	views, err := h.Lifecycle.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetProviderAppointmentsHandler lists the acting provider's paid
// appointments.
func (h *AppointmentHandler) GetProviderAppointmentsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	views, err := h.Lifecycle.ListForProvider(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetAdminAppointmentsHandler lists all appointments for the admin
// dashboard.
func (h *AppointmentHandler) GetAdminAppointmentsHandler(c *gin.Context) {
	views, err := h.Lifecycle.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
