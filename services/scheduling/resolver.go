package scheduling

import (
	"context"
	"strings"
	"time"

	appointmentRepo "pawcare/database/repository/appointment"
	providerRepo "pawcare/database/repository/provider"
	serviceRepo "pawcare/database/repository/service"
	"pawcare/models"
	"pawcare/utils"

	"go.uber.org/zap"
)

// serviceTypeAliases maps URL-style service type tokens to the delivery
// methods stored on offerings.
var serviceTypeAliases = map[string]string{
	"video-consultation": models.DeliveryVideo,
	"in-clinic":          models.DeliveryInClinic,
	"home-visit":         models.DeliveryHomeVisit,
}

// ProviderAvailability is the provider profile plus its services collapsed to
// the target date's weekday with only free slots remaining.
type ProviderAvailability struct {
	Provider models.Provider          `json:"provider"`
	Date     string                   `json:"date"`
	Weekday  string                   `json:"weekday"`
	Services []models.ResolvedService `json:"services"`
}

// SlotResolver computes live slot freedom for a provider on a calendar date.
// The cached slot status on the availability document is never trusted;
// freedom is always re-derived from the appointment collection.
type SlotResolver interface {
	Resolve(ctx context.Context, kind models.ProviderKind, providerID, dateStr, serviceType string) (*ProviderAvailability, error)
}

// DefaultSlotResolver implements SlotResolver.
type DefaultSlotResolver struct {
	Providers    providerRepo.ProviderRepository
	Services     serviceRepo.ServiceRepository
	Appointments appointmentRepo.AppointmentRepository
}

func (r *DefaultSlotResolver) Resolve(ctx context.Context, kind models.ProviderKind, providerID, dateStr, serviceType string) (*ProviderAvailability, error) {
	logger := utils.GetLogger()

	provider, err := r.Providers.FindByID(ctx, kind, providerID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, NewNotFoundError("%s %s not found", kind, providerID)
	}

	services, err := r.Services.FindByProvider(ctx, kind, providerID)
	if err != nil {
		return nil, err
	}

	if serviceType != "" {
		method, ok := serviceTypeAliases[strings.ToLower(strings.TrimSpace(serviceType))]
		if !ok {
			return nil, NewValidationError("invalid service type %q", serviceType)
		}
		var filtered []models.ServiceOffering
		for _, svc := range services {
			if svc.MatchesDeliveryMethod(method) {
				filtered = append(filtered, svc)
			}
		}
		if len(filtered) == 0 {
			return nil, NewNotFoundError("provider doesn't offer %s services", method)
		}
		services = filtered
	}

	targetDate, weekday, err := normalizeDate(dateStr)
	if err != nil {
		return nil, err
	}
	isoDate := targetDate.Format(models.DateLayout)

	// Live freedom comes from the appointment collection, never from the
	// cached slot status.
	taken, err := r.Appointments.ActiveSlots(ctx, kind, providerID, isoDate)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolving slots",
		zap.String("provider", providerID),
		zap.String("date", isoDate),
		zap.String("weekday", weekday),
		zap.Int("takenSlots", len(taken)))

	resolved := make([]models.ResolvedService, 0, len(services))
	for _, svc := range services {
		free := freeSlotsForWeekday(svc, weekday, taken)
		resolved = append(resolved, models.ResolvedService{
			ServiceOffering: svc,
			Availability: []models.DayBlock{{
				Day:   weekday,
				Slots: free,
			}},
		})
	}

	return &ProviderAvailability{
		Provider: *provider,
		Date:     isoDate,
		Weekday:  weekday,
		Services: resolved,
	}, nil
}

// normalizeDate parses YYYY-MM-DD into UTC midnight (today in UTC when
// empty) and derives the weekday name from the UTC day-of-week. Local time
// is never consulted, so server and client timezones cannot skew the
// weekday by one.
func normalizeDate(dateStr string) (time.Time, string, error) {
	var target time.Time
	if dateStr == "" {
		now := time.Now().UTC()
		target = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.ParseInLocation(models.DateLayout, dateStr, time.UTC)
		if err != nil {
			return time.Time{}, "", NewValidationError("invalid date %q, expected YYYY-MM-DD", dateStr)
		}
		target = parsed
	}
	return target, target.Weekday().String(), nil
}

// freeSlotsForWeekday unions every availability block matching the weekday
// (duplicate blocks for the same weekday are a data anomaly and unioned
// permissively), then drops slots claimed by a non-cancelled appointment.
// An empty result is a valid answer, not an error.
func freeSlotsForWeekday(svc models.ServiceOffering, weekday string, taken []models.Slot) []models.Slot {
	var candidates []models.Slot
	for _, block := range svc.Availability {
		if block.MatchesDay(weekday) {
			candidates = append(candidates, block.Slots...)
		}
	}

	free := make([]models.Slot, 0, len(candidates))
	for _, slot := range candidates {
		claimed := false
		for _, t := range taken {
			if slot.SameWindow(t) {
				claimed = true
				break
			}
		}
		if !claimed {
			free = append(free, slot)
		}
	}
	return free
}
