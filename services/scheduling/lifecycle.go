package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "pawcare/database/repository/appointment"
	providerRepo "pawcare/database/repository/provider"
	"pawcare/models"
	"pawcare/services/notification"
	"pawcare/utils"

	"go.uber.org/zap"
)

// LifecycleService owns the appointment status state machine:
//
//	pending → booked → in-progress → completed
//
// with cancelled reachable from pending or booked only. Every provider- or
// user-scoped transition verifies the acting identity against the stored
// provider/user reference.
type LifecycleService interface {
	Start(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)
	CheckIn(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)
	CheckOut(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)
	Complete(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)
	Cancel(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)

	Get(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error)
	ListForUser(ctx context.Context, actor models.Actor) ([]models.AppointmentView, error)
	ListForProvider(ctx context.Context, actor models.Actor) ([]models.AppointmentView, error)
	ListAll(ctx context.Context) ([]models.AppointmentView, error)

	// ExpirePending cancels an abandoned pending appointment whose checkout
	// never completed. A no-op when the appointment has moved on.
	ExpirePending(ctx context.Context, appointmentID string) error
}

// DefaultLifecycleService implements LifecycleService.
type DefaultLifecycleService struct {
	Appointments appointmentRepo.AppointmentRepository
	Providers    providerRepo.ProviderRepository
	Notifier     notification.NotificationService
}

func (s *DefaultLifecycleService) Start(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.loadForProvider(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ConsultationType == models.ConsultationHome {
		return nil, NewValidationError("home consultations use check-in, not start")
	}
	now := time.Now().UTC()
	return s.transition(ctx, appt,
		[]string{models.AppointmentBooked},
		appointmentRepo.TransitionChange{Status: models.AppointmentInProgress, StartedAt: &now})
}

func (s *DefaultLifecycleService) CheckIn(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.loadForProvider(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ConsultationType != models.ConsultationHome {
		return nil, NewValidationError("check-in only available for home consultations")
	}
	now := time.Now().UTC()
	updated, err := s.transition(ctx, appt,
		[]string{models.AppointmentBooked},
		appointmentRepo.TransitionChange{Status: models.AppointmentInProgress, StartedAt: &now})
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, updated, fmt.Sprintf("%s has checked in for your home visit", s.providerName(ctx, updated)))
	return updated, nil
}

func (s *DefaultLifecycleService) CheckOut(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.loadForProvider(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ConsultationType != models.ConsultationHome {
		return nil, NewValidationError("check-out only available for home consultations")
	}
	now := time.Now().UTC()
	updated, err := s.transition(ctx, appt,
		[]string{models.AppointmentInProgress},
		appointmentRepo.TransitionChange{Status: models.AppointmentCompleted, CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, updated, fmt.Sprintf("%s has completed your home visit", s.providerName(ctx, updated)))
	return updated, nil
}

func (s *DefaultLifecycleService) Complete(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.loadForProvider(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.ConsultationType == models.ConsultationHome {
		return nil, NewValidationError("home consultations use check-out, not complete")
	}
	now := time.Now().UTC()
	return s.transition(ctx, appt,
		[]string{models.AppointmentInProgress},
		appointmentRepo.TransitionChange{Status: models.AppointmentCompleted, CompletedAt: &now})
}

// Cancel is the one transition either party may drive. Refund policy: a
// cancelled appointment is marked refunded. The cached availability slot is
// not reverted; the resolver re-derives freedom from appointment status and
// a cancelled appointment no longer blocks the slot.
func (s *DefaultLifecycleService) Cancel(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParty(actor, appt); err != nil {
		return nil, err
	}
	updated, err := s.transition(ctx, appt,
		[]string{models.AppointmentPending, models.AppointmentBooked},
		appointmentRepo.TransitionChange{
			Status:        models.AppointmentCancelled,
			PaymentStatus: models.PaymentRefunded,
			SlotStatus:    models.SlotStatusCancelled,
		})
	if err != nil {
		return nil, err
	}
	s.notifyUser(ctx, updated, fmt.Sprintf("Appointment with %s has been cancelled", s.providerName(ctx, updated)))
	return updated, nil
}

func (s *DefaultLifecycleService) Get(ctx context.Context, actor models.Actor, appointmentID string) (*models.Appointment, error) {
	appt, err := s.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		if err := s.authorizeParty(actor, appt); err != nil {
			return nil, err
		}
	}
	return appt, nil
}

func (s *DefaultLifecycleService) ListForUser(ctx context.Context, actor models.Actor) ([]models.AppointmentView, error) {
	appts, err := s.Appointments.FindByUser(ctx, actor.ID,
		[]string{models.AppointmentBooked, models.AppointmentInProgress, models.AppointmentCompleted}, true)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, appts), nil
}

func (s *DefaultLifecycleService) ListForProvider(ctx context.Context, actor models.Actor) ([]models.AppointmentView, error) {
	kind, ok := actor.ProviderKind()
	if !ok {
		return nil, NewForbiddenError("only providers may list their appointments")
	}
	appts, err := s.Appointments.FindByProvider(ctx, kind, actor.ID,
		[]string{models.AppointmentBooked, models.AppointmentInProgress, models.AppointmentCompleted}, true)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, appts), nil
}

func (s *DefaultLifecycleService) ListAll(ctx context.Context) ([]models.AppointmentView, error) {
	appts, err := s.Appointments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, appts), nil
}

func (s *DefaultLifecycleService) ExpirePending(ctx context.Context, appointmentID string) error {
	err := s.Appointments.ApplyTransition(ctx, appointmentID,
		[]string{models.AppointmentPending},
		appointmentRepo.TransitionChange{
			Status:        models.AppointmentCancelled,
			PaymentStatus: models.PaymentFailed,
			SlotStatus:    models.SlotStatusCancelled,
		})
	if errors.Is(err, appointmentRepo.ErrNoMatch) {
		// Confirmed or already terminal; nothing to reap.
		return nil
	}
	if err != nil {
		return err
	}
	utils.GetLogger().Info("expired abandoned pending appointment", zap.String("appointmentId", appointmentID))
	return nil
}

// --- helpers ---

func (s *DefaultLifecycleService) load(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, NewNotFoundError("appointment %s not found", id)
	}
	return appt, nil
}

// loadForProvider loads the appointment and verifies the actor is the
// provider it belongs to. This is a hard authorization invariant.
func (s *DefaultLifecycleService) loadForProvider(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	kind, ok := actor.ProviderKind()
	if !ok || kind != appt.ProviderKind || actor.ID != appt.ProviderID {
		return nil, NewForbiddenError("not authorized for this appointment")
	}
	return appt, nil
}

func (s *DefaultLifecycleService) authorizeParty(actor models.Actor, appt *models.Appointment) error {
	if actor.Role == models.RoleUser {
		if actor.ID != appt.UserID {
			return NewForbiddenError("not authorized for this appointment")
		}
		return nil
	}
	if kind, ok := actor.ProviderKind(); ok {
		if kind != appt.ProviderKind || actor.ID != appt.ProviderID {
			return NewForbiddenError("not authorized for this appointment")
		}
		return nil
	}
	return NewForbiddenError("not authorized for this appointment")
}

// transition applies a guarded status change. The repository filter re-checks
// the expected statuses so a concurrent writer cannot sneak a transition in
// between our read and write; a losing race surfaces as a Conflict naming
// the expected vs. actual status.
func (s *DefaultLifecycleService) transition(ctx context.Context, appt *models.Appointment, from []string, change appointmentRepo.TransitionChange) (*models.Appointment, error) {
	err := s.Appointments.ApplyTransition(ctx, appt.ID, from, change)
	if errors.Is(err, appointmentRepo.ErrNoMatch) {
		current, loadErr := s.load(ctx, appt.ID)
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, NewConflictError("appointment is %s, expected %s", current.Status, formatStatuses(from))
	}
	if err != nil {
		return nil, err
	}
	return s.load(ctx, appt.ID)
}

func formatStatuses(statuses []string) string {
	if len(statuses) == 1 {
		return statuses[0]
	}
	out := statuses[0]
	for _, st := range statuses[1:] {
		out += " or " + st
	}
	return out
}

func (s *DefaultLifecycleService) providerName(ctx context.Context, appt *models.Appointment) string {
	p, err := s.Providers.FindByID(ctx, appt.ProviderKind, appt.ProviderID)
	if err != nil || p == nil {
		return string(appt.ProviderKind)
	}
	return p.Name
}

func (s *DefaultLifecycleService) notifyUser(ctx context.Context, appt *models.Appointment, message string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Emit(ctx, appt.UserID, models.NotificationAppointment, message, appt.ID)
}

func (s *DefaultLifecycleService) views(ctx context.Context, appts []models.Appointment) []models.AppointmentView {
	names := make(map[string]string)
	out := make([]models.AppointmentView, 0, len(appts))
	for i := range appts {
		key := string(appts[i].ProviderKind) + ":" + appts[i].ProviderID
		name, ok := names[key]
		if !ok {
			name = s.providerName(ctx, &appts[i])
			names[key] = name
		}
		out = append(out, appts[i].View(name))
	}
	return out
}
