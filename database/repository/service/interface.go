package serviceRepo

import (
	"context"

	"pawcare/models"
)

// ServiceRepository persists service offerings with their embedded weekly
// availability templates.
type ServiceRepository interface {
	Upsert(ctx context.Context, svc *models.ServiceOffering) error
	FindByID(ctx context.Context, id string) (*models.ServiceOffering, error)
	FindByProvider(ctx context.Context, kind models.ProviderKind, providerID string) ([]models.ServiceOffering, error)

	// MarkSlotBooked writes the cached "booked" tag onto the matching
	// availability slot (by weekday + start time). Write-only cache update;
	// the appointment record stays authoritative.
	MarkSlotBooked(ctx context.Context, kind models.ProviderKind, providerID, weekday, startTime string) error

	EnsureIndexes() error
}
