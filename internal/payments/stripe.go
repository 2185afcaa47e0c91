// Package payments wraps Stripe hosted checkout and webhook verification.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bust-order-backend/internal/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	ModeOrder = "order"
	ModeRetry = "retry"

	currency = "eur"
)

// AllowedShippingCountries are the countries offered in the checkout address form.
var AllowedShippingCountries = []string{"NL", "BE", "DE", "FR", "LU"}

var (
	ErrMissingSignature = errors.New("missing Stripe-Signature header")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// CheckoutParams describes a single-item checkout session.
type CheckoutParams struct {
	OrderID       string
	Mode          string
	Email         string
	ItemName      string
	AmountCents   int64
	ShippingCents int64
	BustHeightMM  int
	FilamentColor string
	Origin        string
}

// Completion is what the service needs from a checkout.session.completed event.
type Completion struct {
	SessionID     string
	OrderID       string
	Mode          string
	FilamentColor string
	Shipping      models.Shipping
}

type StripeService struct {
	WebhookSecret string
}

func NewStripeService(secretKey, webhookSecret string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{WebhookSecret: webhookSecret}
}

// CreateCheckoutSession returns the hosted checkout URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ItemName),
					},
				},
			},
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(AllowedShippingCountries),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/order/%s?paid=1", p.Origin, p.OrderID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/order/%s?canceled=1", p.Origin, p.OrderID)),
	}
	params.Context = ctx

	if p.ShippingCents > 0 {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					DisplayName: stripe.String("Standard shipping"),
					Type:        stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(p.ShippingCents),
						Currency: stripe.String(currency),
					},
					DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(3),
						},
						Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripe.String("business_day"),
							Value: stripe.Int64(7),
						},
					},
				},
			},
		}
	}
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}

	params.AddMetadata("orderId", p.OrderID)
	params.AddMetadata("mode", p.Mode)
	if p.BustHeightMM > 0 {
		params.AddMetadata("bust_height_mm", strconv.Itoa(p.BustHeightMM))
	}
	params.AddMetadata("filament_color", p.FilamentColor)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ParseWebhook verifies the payload signature. It returns a nil Completion
// for any event other than checkout.session.completed.
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*Completion, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess checkoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return sess.completion(), nil
}

type checkoutAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type checkoutParty struct {
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Phone   string           `json:"phone"`
	Address *checkoutAddress `json:"address"`
}

type checkoutSession struct {
	ID              string            `json:"id"`
	Metadata        map[string]string `json:"metadata"`
	ShippingDetails *checkoutParty    `json:"shipping_details"`
	CustomerDetails *checkoutParty    `json:"customer_details"`
}

func (s checkoutSession) completion() *Completion {
	meta := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(s.Metadata[k]); v != "" {
				return v
			}
		}
		return ""
	}

	mode := meta("mode", "checkoutMode")
	if mode == "" {
		mode = ModeOrder
	}

	return &Completion{
		SessionID:     s.ID,
		OrderID:       meta("orderId", "order_id"),
		Mode:          mode,
		FilamentColor: meta("filament_color", "filament"),
		Shipping:      s.shipping(),
	}
}

// shipping prefers shipping_details for name and address; contact fields
// only exist on customer_details.
func (s checkoutSession) shipping() models.Shipping {
	ship := s.ShippingDetails
	if ship == nil {
		ship = &checkoutParty{}
	}
	cust := s.CustomerDetails
	if cust == nil {
		cust = &checkoutParty{}
	}

	name := ship.Name
	if name == "" {
		name = cust.Name
	}
	addr := ship.Address
	if addr == nil {
		addr = cust.Address
	}
	if addr == nil {
		addr = &checkoutAddress{}
	}

	return models.Shipping{
		Name:       models.NullString(name),
		Email:      models.NullString(cust.Email),
		Phone:      models.NullString(cust.Phone),
		Line1:      models.NullString(addr.Line1),
		Line2:      models.NullString(addr.Line2),
		City:       models.NullString(addr.City),
		Region:     models.NullString(addr.State),
		PostalCode: models.NullString(addr.PostalCode),
		Country:    models.NullString(addr.Country),
	}
}
