package handlers

import (
	"net/http"

	"pawcare/middleware"
	"pawcare/services/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler lists the acting user's notifications.
type NotificationHandler struct {
	Notifications notification.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

// ListNotificationsHandler returns notifications for the acting identity,
// newest first.
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	notes, err := h.Notifications.ListForUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}
