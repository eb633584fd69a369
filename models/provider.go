package models

import (
	"fmt"
	"strings"
	"time"
)

// ProviderKind discriminates the provider verticals that share one
// appointment/service schema.
type ProviderKind string

const (
	ProviderVet     ProviderKind = "vet"
	ProviderGroomer ProviderKind = "groomer"
	ProviderSitter  ProviderKind = "sitter"
)

// ParseProviderKind normalizes a path/metadata value into a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderVet:
		return ProviderVet, nil
	case ProviderGroomer:
		return ProviderGroomer, nil
	case ProviderSitter:
		return ProviderSitter, nil
	}
	return "", fmt.Errorf("unknown provider kind %q", s)
}

// KindTraits captures the per-kind variation that used to live in three
// parallel schemas: which consultation types and delivery methods are legal.
type KindTraits struct {
	ConsultationTypes []string
	DeliveryMethods   []string
}

var kindTraits = map[ProviderKind]KindTraits{
	ProviderVet: {
		ConsultationTypes: []string{ConsultationVideo, ConsultationInClinic, ConsultationHome},
		DeliveryMethods:   []string{DeliveryVideo, DeliveryInClinic, DeliveryHomeVisit},
	},
	ProviderGroomer: {
		ConsultationTypes: []string{ConsultationInClinic, ConsultationHome},
		DeliveryMethods:   []string{DeliveryInClinic, DeliveryHomeVisit},
	},
	ProviderSitter: {
		ConsultationTypes: []string{ConsultationInClinic, ConsultationHome},
		DeliveryMethods:   []string{DeliveryInClinic, DeliveryHomeVisit},
	},
}

// Traits returns the per-kind trait table entry.
func (k ProviderKind) Traits() KindTraits {
	return kindTraits[k]
}

// AllowsConsultationType reports whether the kind supports the given
// consultation type.
func (k ProviderKind) AllowsConsultationType(ct string) bool {
	for _, t := range k.Traits().ConsultationTypes {
		if strings.EqualFold(strings.TrimSpace(ct), t) {
			return true
		}
	}
	return false
}

// Provider is the polymorphic provider entity, tagged by kind.
type Provider struct {
	ID        string       `bson:"id" json:"id"`
	Kind      ProviderKind `bson:"kind" json:"kind"`
	Name      string       `bson:"name" json:"name"`
	Email     string       `bson:"email" json:"email,omitempty"`
	Phone     string       `bson:"phone" json:"phone,omitempty"`
	City      string       `bson:"city" json:"city,omitempty"`
	Address   string       `bson:"address" json:"address,omitempty"`
	Bio       string       `bson:"bio" json:"bio,omitempty"`
	Verified  bool         `bson:"verified" json:"verified"`
	Rating    float64      `bson:"rating" json:"rating,omitempty"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt,omitzero"`
}
