package routes

import (
	"net/http"
	"time"

	"pawcare/handlers"
	"pawcare/middleware"
	"pawcare/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterProviderRoutes registers provider profile and service-offering
// endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		// Offering management requires a provider identity.
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(middleware.ProviderRoles()...))
		protected.PUT("/services", hb.Provider.UpsertServiceHandler)
		protected.GET("/services", hb.Provider.ListServicesHandler)

		// Public profile with resolved free slots for a date.
		api.GET("/:kind/:id", hb.Provider.GetProviderHandler)
	}
}

// RegisterAppointmentRoutes registers the booking and lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		userOnly := api.Group("")
		userOnly.Use(middleware.AuthMiddleware(models.RoleUser))
		userOnly.POST("/book/:kind/:providerId", hb.Appointment.CreateAppointmentHandler)
		userOnly.POST("/confirm", hb.Appointment.ConfirmAppointmentHandler)
		userOnly.GET("/user", hb.Appointment.GetUserAppointmentsHandler)

		providerOnly := api.Group("")
		providerOnly.Use(middleware.AuthMiddleware(middleware.ProviderRoles()...))
		providerOnly.POST("/start/:id", hb.Appointment.StartHandler)
		providerOnly.POST("/checkin/:id", hb.Appointment.CheckInHandler)
		providerOnly.POST("/checkout/:id", hb.Appointment.CheckOutHandler)
		providerOnly.POST("/complete/:id", hb.Appointment.CompleteHandler)
		providerOnly.GET("/provider", hb.Appointment.GetProviderAppointmentsHandler)

		// Either party may cancel or view; the service enforces ownership.
		anyParty := api.Group("")
		anyParty.Use(middleware.AuthMiddleware())
		anyParty.POST("/cancel/:id", hb.Appointment.CancelHandler)
		anyParty.GET("/id/:id", hb.Appointment.GetAppointmentHandler)
	}
}

// RegisterWebhookRoutes registers the payment webhook. Authentication is the
// Stripe signature, not a bearer token.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhook/stripe", hb.Webhook.StripeWebhookHandler)
}

// RegisterNotificationRoutes registers notification listing.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.AuthMiddleware())
		api.GET("", hb.Notification.ListNotificationsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AuthMiddleware(models.RoleAdmin))
		adminGroup.GET("/appointments", hb.Appointment.GetAdminAppointmentsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm PawCare"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterProviderRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
