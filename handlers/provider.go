package handlers

import (
	"net/http"

	"pawcare/middleware"
	"pawcare/models"
	"pawcare/services/scheduling"
	"pawcare/utils"

	"github.com/gin-gonic/gin"
)

// ProviderHandler exposes provider profiles with resolved slot availability
// and provider-side service-offering management.
type ProviderHandler struct {
	Resolver     scheduling.SlotResolver
	Availability scheduling.AvailabilityService
}

// NewProviderHandler constructs a ProviderHandler.
func NewProviderHandler(resolver scheduling.SlotResolver, availability scheduling.AvailabilityService) *ProviderHandler {
	return &ProviderHandler{Resolver: resolver, Availability: availability}
}

// GetProviderHandler returns the provider profile plus its services with
// free slots resolved for the requested date (today in UTC when absent).
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	kind, err := models.ParseProviderKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Resolver.Resolve(
		c.Request.Context(),
		kind,
		c.Param("id"),
		c.Query("date"),
		c.Query("serviceType"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpsertServiceHandler creates or updates one of the acting provider's
// service offerings, including its weekly availability template.
func (h *ProviderHandler) UpsertServiceHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var svc models.ServiceOffering
	if err := c.ShouldBindJSON(&svc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid service offering", err.Error())
		return
	}

	saved, err := h.Availability.UpsertOffering(c.Request.Context(), actor, &svc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListServicesHandler lists the acting provider's service offerings.
func (h *ProviderHandler) ListServicesHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	svcs, err := h.Availability.ListOfferings(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svcs)
}
