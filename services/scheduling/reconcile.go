package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "pawcare/database/repository/appointment"
	"pawcare/models"
	"pawcare/utils"

	"go.uber.org/zap"
)

// ConfirmBySession is the client-driven confirmation path: after the
// checkout redirect the client posts the session id, the session is looked
// up with the payment provider, and the linkage metadata routes to the
// appointment.
func (s *DefaultBookingService) ConfirmBySession(ctx context.Context, sessionID string) (*ConfirmationResult, error) {
	if sessionID == "" {
		return nil, NewValidationError("session_id is required")
	}
	sess, err := s.Gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	linkage, err := LinkageFromMetadata(sess.Metadata)
	if err != nil {
		// Session metadata should always carry the linkage; fall back to the
		// stored session reference before giving up.
		appt, findErr := s.Appointments.FindByCheckoutSession(ctx, sess.ID)
		if findErr != nil || appt == nil {
			return nil, err
		}
		linkage = SessionLinkage{
			AppointmentID: appt.ID,
			ProviderKind:  appt.ProviderKind,
			ProviderID:    appt.ProviderID,
		}
	}
	return s.ConfirmFromLinkage(ctx, linkage)
}

// ConfirmFromLinkage applies the booked/paid transition. Both confirmation
// paths (client confirm and webhook) funnel through here, so replays are
// idempotent: an already-confirmed appointment short-circuits successfully
// with no second notification and no second slot-cache write.
func (s *DefaultBookingService) ConfirmFromLinkage(ctx context.Context, linkage SessionLinkage) (*ConfirmationResult, error) {
	logger := utils.GetLogger()

	appt, err := s.Appointments.FindByID(ctx, linkage.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, NewNotFoundError("appointment %s not found", linkage.AppointmentID)
	}
	if appt.ProviderKind != linkage.ProviderKind || appt.ProviderID != linkage.ProviderID {
		return nil, NewValidationError("session metadata does not match appointment %s", appt.ID)
	}

	if appt.Confirmed() {
		return &ConfirmationResult{Appointment: appt, AlreadyConfirmed: true}, nil
	}
	if appt.Status == models.AppointmentCancelled {
		return nil, NewConflictError("appointment %s is cancelled", appt.ID)
	}

	err = s.Appointments.ClaimBooked(ctx, appt.ID)
	switch {
	case errors.Is(err, appointmentRepo.ErrSlotTaken):
		return nil, NewConflictError("slot no longer available")
	case errors.Is(err, appointmentRepo.ErrNoMatch):
		// Lost a race against the other confirmation path. Re-read and
		// treat a converged booked/paid state as the idempotent no-op.
		current, loadErr := s.Appointments.FindByID(ctx, appt.ID)
		if loadErr != nil {
			return nil, loadErr
		}
		if current == nil {
			return nil, NewNotFoundError("appointment %s not found", appt.ID)
		}
		if current.Confirmed() {
			return &ConfirmationResult{Appointment: current, AlreadyConfirmed: true}, nil
		}
		return nil, NewConflictError("appointment is %s, expected %s", current.Status, models.AppointmentPending)
	case err != nil:
		return nil, err
	}

	confirmed, err := s.Appointments.FindByID(ctx, appt.ID)
	if err != nil {
		return nil, err
	}
	if confirmed == nil {
		return nil, NewNotFoundError("appointment %s not found", appt.ID)
	}

	// Cached-slot projection on the availability document. Write-only and
	// best-effort: the appointment record is authoritative, so a failure
	// here must not block the transition.
	weekday := weekdayOf(confirmed.Date)
	if err := s.Services.MarkSlotBooked(ctx, confirmed.ProviderKind, confirmed.ProviderID, weekday, confirmed.Slot.StartTime); err != nil {
		logger.Error("failed to update availability slot cache",
			zap.String("appointmentId", confirmed.ID), zap.Error(err))
	}

	providerName := s.providerName(ctx, confirmed)
	if s.Notifier != nil {
		s.Notifier.Emit(ctx, confirmed.UserID, models.NotificationAppointment,
			fmt.Sprintf("Your appointment with %s is booked.", providerName), confirmed.ID)
	}
	s.scheduleReminder(ctx, confirmed, providerName)

	logger.Info("appointment confirmed",
		zap.String("appointmentId", confirmed.ID),
		zap.String("provider", confirmed.ProviderID),
		zap.String("date", confirmed.Date))

	return &ConfirmationResult{Appointment: confirmed}, nil
}

func (s *DefaultBookingService) providerName(ctx context.Context, appt *models.Appointment) string {
	p, err := s.Providers.FindByID(ctx, appt.ProviderKind, appt.ProviderID)
	if err != nil || p == nil {
		return string(appt.ProviderKind)
	}
	return p.Name
}

// scheduleReminder enqueues a durable reminder an hour before the slot
// starts. Appointments already inside the hour get none.
func (s *DefaultBookingService) scheduleReminder(ctx context.Context, appt *models.Appointment, providerName string) {
	if s.Tasks == nil {
		return
	}
	startAt, err := slotStartTime(appt.Date, appt.Slot.StartTime)
	if err != nil {
		utils.GetLogger().Warn("cannot schedule reminder for unparseable slot time",
			zap.String("appointmentId", appt.ID),
			zap.String("startTime", appt.Slot.StartTime))
		return
	}
	fireAt := startAt.Add(-time.Hour)
	if !fireAt.After(time.Now().UTC()) {
		return
	}
	payload := models.ReminderPayload{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		ProviderName:  providerName,
		Date:          appt.Date,
		StartTime:     appt.Slot.StartTime,
	}
	if err := s.Tasks.ScheduleReminder(ctx, payload, fireAt); err != nil {
		utils.GetLogger().Error("failed to schedule appointment reminder",
			zap.String("appointmentId", appt.ID), zap.Error(err))
	}
}

func weekdayOf(isoDate string) string {
	t, err := time.ParseInLocation(models.DateLayout, isoDate, time.UTC)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

func slotStartTime(isoDate, startTime string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, isoDate, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(models.TimeLayout, startTime, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
