package scheduling

import (
	"context"
	"fmt"
	"time"

	"pawcare/config"
	appointmentRepo "pawcare/database/repository/appointment"
	providerRepo "pawcare/database/repository/provider"
	serviceRepo "pawcare/database/repository/service"
	"pawcare/models"
	"pawcare/services/notification"
	"pawcare/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskScheduler enqueues durable scheduled jobs (reminders, pending-checkout
// expiry). Backed by asynq in production.
type TaskScheduler interface {
	ScheduleReminder(ctx context.Context, p models.ReminderPayload, fireAt time.Time) error
	ScheduleExpirePending(ctx context.Context, p models.ExpirePendingPayload, fireAt time.Time) error
}

// CreateAppointmentRequest is the booking-request payload.
type CreateAppointmentRequest struct {
	ServiceID        string  `json:"serviceId"`
	Date             string  `json:"date" binding:"required"`
	StartTime        string  `json:"startTime" binding:"required"`
	EndTime          string  `json:"endTime" binding:"required"`
	Fee              float64 `json:"fee" binding:"required"`
	ConsultationType string  `json:"consultationType" binding:"required"`
	Currency         string  `json:"currency"`
}

// CheckoutRedirect is returned to the client so it can redirect the payer to
// the external checkout page.
type CheckoutRedirect struct {
	AppointmentID string `json:"appointmentId"`
	URL           string `json:"url"`
}

// ConfirmationResult reports the converged state of a confirmation attempt.
// AlreadyConfirmed marks an idempotent replay: success with no side-effects.
type ConfirmationResult struct {
	Appointment      *models.Appointment
	AlreadyConfirmed bool
}

// BookingService orchestrates appointment creation, checkout-session
// creation, and the two confirmation paths that must converge on one final
// state.
type BookingService interface {
	CreateAppointment(ctx context.Context, actor models.Actor, kind models.ProviderKind, providerID string, req CreateAppointmentRequest) (*CheckoutRedirect, error)
	ConfirmBySession(ctx context.Context, sessionID string) (*ConfirmationResult, error)
	ConfirmFromLinkage(ctx context.Context, linkage SessionLinkage) (*ConfirmationResult, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Appointments appointmentRepo.AppointmentRepository
	Providers    providerRepo.ProviderRepository
	Services     serviceRepo.ServiceRepository
	Gateway      PaymentGateway
	Notifier     notification.NotificationService
	Tasks        TaskScheduler
}

func (s *DefaultBookingService) CreateAppointment(ctx context.Context, actor models.Actor, kind models.ProviderKind, providerID string, req CreateAppointmentRequest) (*CheckoutRedirect, error) {
	logger := utils.GetLogger()

	if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return nil, NewValidationError("date, startTime and endTime are required")
	}
	if req.Fee <= 0 {
		return nil, NewValidationError("fee must be positive")
	}
	if !kind.AllowsConsultationType(req.ConsultationType) {
		return nil, NewValidationError("%s providers do not offer %q consultations", kind, req.ConsultationType)
	}

	target, _, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	isoDate := target.Format(models.DateLayout)

	provider, err := s.Providers.FindByID(ctx, kind, providerID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, NewNotFoundError("%s %s not found", kind, providerID)
	}

	if req.ServiceID != "" {
		svc, err := s.Services.FindByID(ctx, req.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil || svc.ProviderID != providerID || svc.ProviderKind != kind {
			return nil, NewNotFoundError("service %s not found for %s %s", req.ServiceID, kind, providerID)
		}
	}

	// Only video consultations get a call room.
	roomID := ""
	if req.ConsultationType == models.ConsultationVideo {
		roomID = uuid.New().String()
	}

	now := time.Now().UTC()
	appt := &models.Appointment{
		ID:           uuid.New().String(),
		ProviderKind: kind,
		ProviderID:   providerID,
		UserID:       actor.ID,
		ServiceID:    req.ServiceID,
		Date:         isoDate,
		Slot: models.Slot{
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Status:    models.SlotStatusPending,
		},
		Fee:              req.Fee,
		ConsultationType: req.ConsultationType,
		Status:           models.AppointmentPending,
		PaymentStatus:    models.PaymentPending,
		RoomID:           roomID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Appointments.Insert(ctx, appt); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	successURL, cancelURL := CheckoutURLs(appt.ID)
	sess, err := s.Gateway.CreateCheckoutSession(ctx, CheckoutParams{
		Amount:      req.Fee,
		Currency:    currency,
		ProductName: fmt.Sprintf("Appointment with %s", provider.Name),
		Description: fmt.Sprintf("On %s at %s–%s", isoDate, req.StartTime, req.EndTime),
		Metadata: map[string]string{
			MetaAppointmentID: appt.ID,
			MetaProviderKind:  string(kind),
			MetaProviderID:    providerID,
		},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		// The pending appointment stays behind; the expiry reaper cleans it
		// up if the user never retries.
		return nil, err
	}

	if err := s.Appointments.SetCheckoutSession(ctx, appt.ID, sess.ID); err != nil {
		return nil, err
	}

	if s.Tasks != nil {
		ttl := time.Duration(config.AppConfig.PendingAppointmentTTLMin) * time.Minute
		if ttl <= 0 {
			ttl = 30 * time.Minute
		}
		if err := s.Tasks.ScheduleExpirePending(ctx, models.ExpirePendingPayload{AppointmentID: appt.ID}, now.Add(ttl)); err != nil {
			logger.Error("failed to schedule pending-appointment expiry",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}

	logger.Info("created pending appointment",
		zap.String("appointmentId", appt.ID),
		zap.String("provider", providerID),
		zap.String("date", isoDate),
		zap.String("slot", req.StartTime))

	return &CheckoutRedirect{AppointmentID: appt.ID, URL: sess.URL}, nil
}
