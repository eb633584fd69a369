package models

import "time"

// Notification types.
const (
	NotificationAppointment = "appointment"
	NotificationReminder    = "reminder"
)

// Notification is a persisted best-effort event emitted on lifecycle
// transitions. Delivery failures never block the transition itself.
type Notification struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      string    `bson:"type" json:"type"`
	Message   string    `bson:"message" json:"message"`
	RelatedID string    `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the asynq task payload for a scheduled appointment
// reminder.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
	UserID        string `json:"userId"`
	ProviderName  string `json:"providerName"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
}

// ExpirePendingPayload is the asynq task payload for reaping an abandoned
// pending appointment whose checkout was never completed.
type ExpirePendingPayload struct {
	AppointmentID string `json:"appointmentId"`
}
