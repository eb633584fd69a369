package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"pawcare/models"
)

// Sentinel errors surfaced by conditional writes.
var (
	// ErrSlotTaken means another appointment for the same provider/date/slot
	// already reached booked status (unique-index race lost).
	ErrSlotTaken = errors.New("slot already booked by another appointment")
	// ErrNoMatch means the conditional filter matched no document: the
	// appointment is missing or not in an eligible status. Callers re-read
	// to tell the two apart.
	ErrNoMatch = errors.New("no appointment matched the conditional update")
)

// TransitionChange is the field set applied by a guarded status transition.
// Zero-valued fields are left untouched.
type TransitionChange struct {
	Status        string
	PaymentStatus string
	SlotStatus    string
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// AppointmentRepository persists appointments across all provider kinds in a
// single collection discriminated by providerKind.
type AppointmentRepository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*models.Appointment, error)
	SetCheckoutSession(ctx context.Context, id, sessionID string) error

	// ActiveSlots returns the slots of all non-cancelled appointments for
	// the provider on the given date.
	ActiveSlots(ctx context.Context, kind models.ProviderKind, providerID, date string) ([]models.Slot, error)

	// ClaimBooked atomically transitions a pending appointment to
	// booked/paid. Returns ErrSlotTaken when another booked appointment
	// already holds the same provider/date/slot, ErrNoMatch when the
	// appointment is absent or no longer pending.
	ClaimBooked(ctx context.Context, id string) error

	// ApplyTransition updates the appointment only if its current status is
	// one of fromStatuses. Returns ErrNoMatch when nothing matched.
	ApplyTransition(ctx context.Context, id string, fromStatuses []string, change TransitionChange) error

	FindByUser(ctx context.Context, userID string, statuses []string, paidOnly bool) ([]models.Appointment, error)
	FindByProvider(ctx context.Context, kind models.ProviderKind, providerID string, statuses []string, paidOnly bool) ([]models.Appointment, error)
	FindAll(ctx context.Context) ([]models.Appointment, error)

	EnsureIndexes() error
}
