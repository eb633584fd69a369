package models

import "time"

// Appointment statuses.
const (
	AppointmentPending    = "pending"
	AppointmentBooked     = "booked"
	AppointmentInProgress = "in-progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
)

// Payment statuses, an axis orthogonal to the appointment status.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// DateLayout is the canonical calendar-date format stored on appointments.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical wall-clock format for slot times ("2:00 PM").
const TimeLayout = "3:04 PM"

// Appointment is one booking attempt for a (provider, user, date, slot)
// tuple. It is never deleted; cancellation is a terminal status.
type Appointment struct {
	ID           string       `bson:"id" json:"id"`
	ProviderKind ProviderKind `bson:"providerKind" json:"providerKind"`
	ProviderID   string       `bson:"providerId" json:"providerId"`
	UserID       string       `bson:"userId" json:"userId"`
	ServiceID    string       `bson:"serviceId,omitempty" json:"serviceId,omitempty"`

	Date string  `bson:"date" json:"date"` // UTC-normalized, DateLayout
	Slot Slot    `bson:"slot" json:"slot"`
	Fee  float64 `bson:"fee" json:"fee"`

	ConsultationType string `bson:"consultationType" json:"consultationType"`
	Status           string `bson:"status" json:"status"`
	PaymentStatus    string `bson:"paymentStatus" json:"paymentStatus"`

	CheckoutSessionID string `bson:"checkoutSessionId,omitempty" json:"checkoutSessionId,omitempty"`
	RoomID            string `bson:"roomId,omitempty" json:"roomId,omitempty"` // video consultations only

	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Confirmed reports whether the booked/paid transition has already been
// applied, so replayed confirmations can short-circuit. The appointment may
// have moved past booked by the time a late replay lands, so any paid
// non-cancelled appointment counts as confirmed.
func (a *Appointment) Confirmed() bool {
	return a.PaymentStatus == PaymentPaid && a.Status != AppointmentCancelled
}

// Terminal reports whether no further status transitions are legal.
func (a *Appointment) Terminal() bool {
	return a.Status == AppointmentCompleted || a.Status == AppointmentCancelled
}

// AppointmentView is the normalized listing shape returned to clients,
// independent of provider kind.
type AppointmentView struct {
	ID               string       `json:"id"`
	ProviderKind     ProviderKind `json:"providerKind"`
	ProviderID       string       `json:"providerId"`
	ProviderName     string       `json:"providerName,omitempty"`
	UserID           string       `json:"userId"`
	Date             string       `json:"date"`
	Slot             Slot         `json:"slot"`
	Fee              float64      `json:"fee"`
	ConsultationType string       `json:"consultationType"`
	Status           string       `json:"status"`
	PaymentStatus    string       `json:"paymentStatus"`
	RoomID           string       `json:"roomId,omitempty"`
	StartedAt        *time.Time   `json:"startedAt,omitempty"`
	CompletedAt      *time.Time   `json:"completedAt,omitempty"`
}

// View converts an appointment to its listing shape.
func (a *Appointment) View(providerName string) AppointmentView {
	return AppointmentView{
		ID:               a.ID,
		ProviderKind:     a.ProviderKind,
		ProviderID:       a.ProviderID,
		ProviderName:     providerName,
		UserID:           a.UserID,
		Date:             a.Date,
		Slot:             a.Slot,
		Fee:              a.Fee,
		ConsultationType: a.ConsultationType,
		Status:           a.Status,
		PaymentStatus:    a.PaymentStatus,
		RoomID:           a.RoomID,
		StartedAt:        a.StartedAt,
		CompletedAt:      a.CompletedAt,
	}
}
