package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"pawcare/config"
	"pawcare/services/scheduling"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

// webhookEventTTL bounds how long a processed Stripe event ID is remembered
// for replay suppression.
const webhookEventTTL = 24 * time.Hour

// WebhookHandler receives Stripe events. Checkout completions funnel into
// the same confirmation path the client-side confirm endpoint uses.
type WebhookHandler struct {
	Booking scheduling.BookingService
	Logger  *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(booking scheduling.BookingService) *WebhookHandler {
	return &WebhookHandler{Booking: booking, Logger: utils.GetLogger().Named("webhook")}
}

// StripeWebhookHandler verifies the event signature and dispatches by type.
// Unhandled event types are acknowledged so Stripe stops retrying them.
func (h *WebhookHandler) StripeWebhookHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if !h.claimEvent(c, string(event.ID)) {
		h.Logger.Info("duplicate webhook event ignored", zap.String("eventId", string(event.ID)))
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.Logger.Error("failed to decode checkout session", zap.Error(err))
			h.releaseEvent(c, string(event.ID))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		h.handleCheckoutCompleted(c, string(event.ID), &sess)
	default:
		h.Logger.Debug("unhandled webhook event type", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, eventID string, sess *stripe.CheckoutSession) {
	linkage, err := scheduling.LinkageFromMetadata(sess.Metadata)
	if err != nil {
		h.Logger.Error("checkout session missing appointment metadata",
			zap.String("sessionId", sess.ID), zap.Error(err))
		h.releaseEvent(c, eventID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing appointment metadata"})
		return
	}

	result, err := h.Booking.ConfirmFromLinkage(c.Request.Context(), linkage)
	if err != nil {
		var conflict *scheduling.ConflictError
		if errors.As(err, &conflict) {
			// The slot was lost or the appointment already moved on. Nothing
			// Stripe can do about it, so acknowledge and let support tooling
			// pick it up from the logs.
			h.Logger.Warn("checkout completed but confirmation conflicted",
				zap.String("appointmentId", linkage.AppointmentID), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true, "confirmed": false})
			return
		}
		// A transient failure here must not consume the event: Stripe will
		// redeliver, and the retry has to reach the booking engine.
		h.releaseEvent(c, eventID)
		respondError(c, err)
		return
	}

	h.Logger.Info("appointment confirmed via webhook",
		zap.String("appointmentId", result.Appointment.ID),
		zap.Bool("alreadyConfirmed", result.AlreadyConfirmed))
	c.JSON(http.StatusOK, gin.H{"received": true, "confirmed": true})
}

// claimEvent records the event ID in redis so retries and concurrent
// deliveries of the same event process at most once. A cache failure
// degrades to processing the event; confirmation is idempotent anyway.
func (h *WebhookHandler) claimEvent(c *gin.Context, eventID string) bool {
	if eventID == "" {
		return true
	}
	ok, err := utils.GetCacheClient().SetNX(c.Request.Context(), "stripe:event:"+eventID, 1, webhookEventTTL).Result()
	if err != nil {
		h.Logger.Warn("webhook dedup cache unavailable", zap.Error(err))
		return true
	}
	return ok
}

// releaseEvent drops a dedup claim taken by claimEvent so a redelivery of the
// event is processed again. Confirmation is idempotent, so an unreleased claim
// expiring on its own is harmless; a claim held across a failed delivery is
// not, because it would silence every retry.
func (h *WebhookHandler) releaseEvent(c *gin.Context, eventID string) {
	if eventID == "" {
		return
	}
	if err := utils.GetCacheClient().Del(c.Request.Context(), "stripe:event:"+eventID).Err(); err != nil {
		h.Logger.Warn("failed to release webhook dedup claim",
			zap.String("eventId", eventID), zap.Error(err))
	}
}
