package models

import (
	"strings"
	"time"
)

// Consultation types carried on an appointment.
const (
	ConsultationVideo    = "video"
	ConsultationInClinic = "in-clinic"
	ConsultationHome     = "home"
)

// Delivery methods carried on a service offering.
const (
	DeliveryVideo     = "Video Consultation"
	DeliveryInClinic  = "In-Clinic"
	DeliveryHomeVisit = "Home Visit"
)

// Coverage types for home-visit offerings.
const (
	CoverageRadius = "radius"
	CoverageAreas  = "areas"
)

// Slot statuses. A slot's status on the availability document is a cached
// projection of appointment state; the appointment collection stays
// authoritative for whether a slot is taken on a given date.
const (
	SlotStatusPending   = "pending"
	SlotStatusBooked    = "booked"
	SlotStatusCancelled = "cancelled"
)

// Slot is one bookable window inside a weekday block. Times are wall-clock
// strings in a fixed canonical format (e.g. "2:00 PM"); matching is by exact
// string equality.
type Slot struct {
	StartTime string `bson:"startTime" json:"startTime" binding:"required"`
	EndTime   string `bson:"endTime" json:"endTime" binding:"required"`
	Status    string `bson:"status,omitempty" json:"status,omitempty"`
}

// SameWindow reports whether two slots cover the identical window.
func (s Slot) SameWindow(o Slot) bool {
	return s.StartTime == o.StartTime && s.EndTime == o.EndTime
}

// DayBlock holds the recurring slots for one weekday name (Monday..Sunday).
// A service is expected to carry at most one block per weekday; duplicates
// are tolerated and unioned by the resolver.
type DayBlock struct {
	Day   string `bson:"day" json:"day" binding:"required"`
	Slots []Slot `bson:"slots" json:"slots"`
}

// MatchesDay compares the block's weekday name case-insensitively.
func (b DayBlock) MatchesDay(weekday string) bool {
	return strings.EqualFold(strings.TrimSpace(b.Day), strings.TrimSpace(weekday))
}

// ServiceOffering is one provider-owned service with its recurring weekly
// availability template embedded.
type ServiceOffering struct {
	ID            string       `bson:"id" json:"id"`
	ProviderID    string       `bson:"providerId" json:"providerId"`
	ProviderKind  ProviderKind `bson:"providerKind" json:"providerKind"`
	Services      []string     `bson:"services" json:"services" binding:"required"`
	CustomService string       `bson:"customService,omitempty" json:"customService,omitempty"`
	Description   string       `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64      `bson:"price" json:"price" binding:"required"`
	Duration      int          `bson:"duration,omitempty" json:"duration,omitempty"` // minutes
	IsActive      bool         `bson:"isActive" json:"isActive"`

	DeliveryMethod string   `bson:"deliveryMethod" json:"deliveryMethod" binding:"required"`
	Address        string   `bson:"address,omitempty" json:"address,omitempty"`
	City           string   `bson:"city,omitempty" json:"city,omitempty"`
	CoverageType   string   `bson:"coverageType,omitempty" json:"coverageType,omitempty"`
	ServiceRadius  float64  `bson:"serviceRadius,omitempty" json:"serviceRadius,omitempty"` // km
	CommuteBuffer  int      `bson:"commuteBuffer,omitempty" json:"commuteBuffer,omitempty"` // minutes
	Areas          []string `bson:"areas,omitempty" json:"areas,omitempty"`

	Availability []DayBlock `bson:"availability" json:"availability"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// IsHomeVisit reports whether the offering is delivered at the customer's home.
func (s *ServiceOffering) IsHomeVisit() bool {
	return strings.EqualFold(strings.TrimSpace(s.DeliveryMethod), DeliveryHomeVisit)
}

// MatchesDeliveryMethod compares delivery methods ignoring case and
// surrounding whitespace.
func (s *ServiceOffering) MatchesDeliveryMethod(method string) bool {
	return strings.EqualFold(strings.TrimSpace(s.DeliveryMethod), strings.TrimSpace(method))
}

// ResolvedService is a service offering whose availability has been collapsed
// to the single target weekday with only free slots remaining.
type ResolvedService struct {
	ServiceOffering
	Availability []DayBlock `json:"availability"`
}
