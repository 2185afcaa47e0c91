package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bust-order-backend/internal/events"
	"bust-order-backend/internal/models"
	"bust-order-backend/internal/payments"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutGateway is the payment processor.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (string, error)
	ParseWebhook(payload []byte, signature string) (*payments.Completion, error)
}

type PaymentService struct {
	repo    OrderRepository
	gateway CheckoutGateway
	events  EventPublisher
	siteURL string
	log     *zap.Logger
}

func NewPaymentService(repo OrderRepository, gateway CheckoutGateway, publisher EventPublisher, siteURL string, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{repo: repo, gateway: gateway, events: publisher, siteURL: siteURL, log: log}
}

// Checkout creates a hosted checkout session for the bust itself (mode
// "order") or for one extra preview generation (mode "retry").
func (s *PaymentService) Checkout(ctx context.Context, req models.CheckoutRequest, origin string) (*models.CheckoutResponse, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: payments", ErrNotConfigured)
	}

	id, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid orderId", ErrInvalidInput)
	}
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = payments.ModeOrder
	}
	if mode != payments.ModeOrder && mode != payments.ModeRetry {
		return nil, fmt.Errorf("%w: mode must be order or retry", ErrInvalidInput)
	}

	o, err := getOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if mode == payments.ModeOrder && req.FilamentColor != "" {
		filament := models.FilamentColor(req.FilamentColor)
		if !filament.Valid() {
			return nil, fmt.Errorf("%w: unknown filament color", ErrInvalidInput)
		}
		if err := s.repo.SetFilament(ctx, id, filament); err != nil {
			return nil, err
		}
		o.FilamentColor = models.NullString(string(filament))
	}

	params := payments.CheckoutParams{
		OrderID:       id.String(),
		Mode:          mode,
		Email:         o.Email,
		BustHeightMM:  o.BustHeightMM,
		FilamentColor: o.FilamentColor.String,
		Origin:        origin,
	}
	if params.Origin == "" {
		params.Origin = s.siteURL
	}

	switch mode {
	case payments.ModeOrder:
		// marked paid below
		if o.Status.IsPaidLike() {
			return nil, fmt.Errorf("%w: order is already paid", ErrConflict)
		}
		if o.PriceCents <= 0 {
			return nil, fmt.Errorf("%w: invalid price_cents on order", ErrInvalidInput)
		}
		if o.BustHeightMM <= 0 {
			return nil, fmt.Errorf("%w: missing bust height on order", ErrInvalidInput)
		}
		if o.FilamentColor.String == "" {
			return nil, fmt.Errorf("%w: choose filament before paying", ErrInvalidInput)
		}
		params.ItemName = fmt.Sprintf("Custom bust (%dmm)", o.BustHeightMM)
		params.AmountCents = o.PriceCents
		params.ShippingCents = ShippingCents(o.BustHeightMM)
	case payments.ModeRetry:
		params.ItemName = "Extra preview generation"
		params.AmountCents = RetryPriceCents
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.log.Info("checkout session created", zap.String("order_id", id.String()), zap.String("mode", mode))
	return &models.CheckoutResponse{URL: url}, nil
}

// HandleWebhook verifies and applies a payment notification. Events that do
// not resolve to a known order are acknowledged without effect.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return fmt.Errorf("%w: payments", ErrNotConfigured)
	}

	completion, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, payments.ErrMissingSignature) || errors.Is(err, payments.ErrInvalidSignature) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return err
	}
	if completion == nil {
		return nil
	}

	id, err := uuid.Parse(completion.OrderID)
	if err != nil {
		s.log.Info("checkout completed without a usable order id, ignoring",
			zap.String("session_id", completion.SessionID),
			zap.String("order_id", completion.OrderID),
		)
		return nil
	}

	switch completion.Mode {
	case payments.ModeRetry:
		ok, err := s.repo.AddRetryCredit(ctx, id, completion.Shipping)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Warn("retry credit for unknown order", zap.String("order_id", id.String()))
			return nil
		}
		s.log.Info("retry credit added", zap.String("order_id", id.String()))
		publish(ctx, s.events, s.log, events.OrderRetryCredit, events.RetryCreditPayload(id))
		return nil
	case payments.ModeOrder:
		// marked paid below
	default:
		s.log.Warn("checkout completed with unknown mode, ignoring",
			zap.String("order_id", id.String()),
			zap.String("mode", completion.Mode),
		)
		return nil
	}

	ok, err := s.repo.MarkPaid(ctx, id, completion.Shipping, completion.FilamentColor)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn("payment for unknown order", zap.String("order_id", id.String()))
		return nil
	}
	s.log.Info("order paid", zap.String("order_id", id.String()), zap.String("session_id", completion.SessionID))
	publish(ctx, s.events, s.log, events.OrderPaid, events.PaidPayload(id, completion.FilamentColor))
	return nil
}
