package scheduling

import (
	"context"
	"fmt"

	"pawcare/config"
	"pawcare/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Metadata keys carried on a checkout session so either confirmation path
// can route back to the appointment without ambiguity.
const (
	MetaAppointmentID = "appointmentId"
	MetaProviderKind  = "providerKind"
	MetaProviderID    = "providerId"
)

// CheckoutSession is the slice of the external checkout session the booking
// engine depends on.
type CheckoutSession struct {
	ID       string
	URL      string
	Metadata map[string]string
}

// CheckoutParams describes the single line item and linkage metadata for a
// new checkout session.
type CheckoutParams struct {
	Amount      float64 // major currency units
	Currency    string
	Description string
	ProductName string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
}

// PaymentGateway is the external checkout provider, treated as a black box.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// StripeGateway implements PaymentGateway over Stripe Checkout.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(int64(p.Amount * 100)), // Stripe expects cents
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, NewExternalServiceError("failed to create checkout session", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL, Metadata: sess.Metadata}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, NewExternalServiceError(fmt.Sprintf("failed to retrieve checkout session %s", sessionID), err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL, Metadata: sess.Metadata}, nil
}

// SessionLinkage is the appointment linkage read back from session metadata.
type SessionLinkage struct {
	AppointmentID string
	ProviderKind  models.ProviderKind
	ProviderID    string
}

// LinkageFromMetadata extracts and validates the appointment linkage from
// checkout-session metadata.
func LinkageFromMetadata(md map[string]string) (SessionLinkage, error) {
	apptID := md[MetaAppointmentID]
	kindStr := md[MetaProviderKind]
	providerID := md[MetaProviderID]
	if apptID == "" || kindStr == "" || providerID == "" {
		return SessionLinkage{}, NewValidationError("missing appointmentId/providerKind/providerId in session metadata")
	}
	kind, err := models.ParseProviderKind(kindStr)
	if err != nil {
		return SessionLinkage{}, NewValidationError("invalid provider kind in session metadata: %v", err)
	}
	return SessionLinkage{AppointmentID: apptID, ProviderKind: kind, ProviderID: providerID}, nil
}

// CheckoutURLs builds the redirect targets for a new checkout session.
func CheckoutURLs(appointmentID string) (successURL, cancelURL string) {
	base := config.AppConfig.FrontendURL
	successURL = base + "/appointments/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL = base + "/appointments/cancel?appointmentId=" + appointmentID
	return successURL, cancelURL
}
