package scheduling

import (
	"context"
	"strings"
	"time"

	serviceRepo "pawcare/database/repository/service"
	"pawcare/models"

	"github.com/google/uuid"
)

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// AvailabilityService owns provider-side CRUD of the recurring weekly
// availability template. It never computes live freedom; that is the
// resolver's job.
type AvailabilityService interface {
	UpsertOffering(ctx context.Context, actor models.Actor, svc *models.ServiceOffering) (*models.ServiceOffering, error)
	ListOfferings(ctx context.Context, actor models.Actor) ([]models.ServiceOffering, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Services serviceRepo.ServiceRepository
}

func (s *DefaultAvailabilityService) UpsertOffering(ctx context.Context, actor models.Actor, svc *models.ServiceOffering) (*models.ServiceOffering, error) {
	kind, ok := actor.ProviderKind()
	if !ok {
		return nil, NewForbiddenError("only providers may manage service offerings")
	}

	svc.ProviderKind = kind
	svc.ProviderID = actor.ID
	if svc.ID == "" {
		svc.ID = uuid.New().String()
		svc.CreatedAt = time.Now().UTC()
		svc.IsActive = true
	} else {
		existing, err := s.Services.FindByID(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, NewNotFoundError("service offering %s not found", svc.ID)
		}
		if existing.ProviderID != actor.ID || existing.ProviderKind != kind {
			return nil, NewForbiddenError("service offering %s belongs to another provider", svc.ID)
		}
		svc.CreatedAt = existing.CreatedAt
	}

	if err := validateOffering(svc); err != nil {
		return nil, err
	}
	if err := s.Services.Upsert(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *DefaultAvailabilityService) ListOfferings(ctx context.Context, actor models.Actor) ([]models.ServiceOffering, error) {
	kind, ok := actor.ProviderKind()
	if !ok {
		return nil, NewForbiddenError("only providers may list their service offerings")
	}
	return s.Services.FindByProvider(ctx, kind, actor.ID)
}

func validateOffering(svc *models.ServiceOffering) error {
	if len(svc.Services) == 0 {
		return NewValidationError("at least one service name is required")
	}
	if svc.Price <= 0 {
		return NewValidationError("price must be positive")
	}

	method := strings.TrimSpace(svc.DeliveryMethod)
	if method == "" {
		return NewValidationError("deliveryMethod is required")
	}
	allowed := false
	for _, m := range svc.ProviderKind.Traits().DeliveryMethods {
		if strings.EqualFold(method, m) {
			allowed = true
			break
		}
	}
	if !allowed {
		return NewValidationError("%s providers do not offer %q delivery", svc.ProviderKind, method)
	}

	if svc.IsHomeVisit() {
		if err := validateHomeVisit(svc); err != nil {
			return err
		}
	}

	return validateAvailability(svc.Availability)
}

// validateHomeVisit enforces the home-visit coverage invariant: address/city
// plus exactly one of radius (positive radius, non-negative buffer) or areas
// (at least one).
func validateHomeVisit(svc *models.ServiceOffering) error {
	if svc.Address == "" || svc.City == "" {
		return NewValidationError("home-visit offerings require address and city")
	}
	switch svc.CoverageType {
	case models.CoverageRadius:
		if svc.ServiceRadius <= 0 {
			return NewValidationError("radius coverage requires a positive serviceRadius")
		}
		if svc.CommuteBuffer < 0 {
			return NewValidationError("commuteBuffer cannot be negative")
		}
		if len(svc.Areas) > 0 {
			return NewValidationError("radius coverage cannot also list areas")
		}
	case models.CoverageAreas:
		if len(svc.Areas) == 0 {
			return NewValidationError("area coverage requires at least one area")
		}
	default:
		return NewValidationError("home-visit offerings require coverageType radius or areas")
	}
	return nil
}

func validateAvailability(blocks []models.DayBlock) error {
	for _, block := range blocks {
		if !weekdayNames[strings.ToLower(strings.TrimSpace(block.Day))] {
			return NewValidationError("invalid weekday %q", block.Day)
		}
		for _, slot := range block.Slots {
			if _, err := time.Parse(models.TimeLayout, slot.StartTime); err != nil {
				return NewValidationError("invalid slot start time %q, expected e.g. %q", slot.StartTime, "2:00 PM")
			}
			if _, err := time.Parse(models.TimeLayout, slot.EndTime); err != nil {
				return NewValidationError("invalid slot end time %q, expected e.g. %q", slot.EndTime, "2:00 PM")
			}
		}
	}
	return nil
}
