// Package billing wraps the Stripe checkout and webhook APIs behind
// the PaymentGateway contract consumed by the billing service.
package billing

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"espectral-server/internal/models"
)

// The 20-token pack: 50.00 MXN.
const (
	packName       = "Paquete de 20 Tokens Espectrales"
	packUnitAmount = 5000
)

// PaymentEvent is a provider-agnostic view of a verified webhook event.
type PaymentEvent struct {
	// Completed is true for a finished checkout; other event types are
	// verified but ignored.
	Completed bool
	UserID    uuid.UUID
}

// PaymentGateway is the external billing collaborator contract.
type PaymentGateway interface {
	CreateCheckout(userID uuid.UUID) (string, error)
	ParseWebhookEvent(payload []byte, signature string) (*PaymentEvent, error)
}

// Compile-time check to ensure stripeGateway implements PaymentGateway
var _ PaymentGateway = (*stripeGateway)(nil)

type stripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	logger        *zap.Logger
}

// Config holds the Stripe settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// NewStripeGateway creates the Stripe-backed PaymentGateway.
func NewStripeGateway(cfg Config, logger *zap.Logger) PaymentGateway {
	stripe.Key = cfg.SecretKey
	return &stripeGateway{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		logger:        logger.Named("StripeGateway"),
	}
}

// CreateCheckout creates a checkout session for the token pack and
// returns the hosted payment page URL. The user id travels in the
// session metadata and comes back on the completion webhook.
func (g *stripeGateway) CreateCheckout(userID uuid.UUID) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyMXN)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(packName),
					},
					UnitAmount: stripe.Int64(packUnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", userID.String())

	sess, err := checkoutsession.New(params)
	if err != nil {
		g.logger.Error("Failed to create checkout session", zap.Error(err), zap.String("userID", userID.String()))
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info("Checkout session created", zap.String("userID", userID.String()), zap.String("checkoutID", sess.ID))
	return sess.URL, nil
}

// ParseWebhookEvent verifies the event signature and extracts the
// completion details. Unverified or malformed events are rejected with
// ErrWebhookVerification and must cause no side effects upstream.
func (g *stripeGateway) ParseWebhookEvent(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrWebhookVerification, err)
	}

	if event.Type != "checkout.session.completed" {
		g.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return &PaymentEvent{Completed: false}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		g.logger.Warn("Failed to decode checkout session from webhook", zap.Error(err))
		return nil, fmt.Errorf("%w: malformed event payload", models.ErrWebhookVerification)
	}

	userID, err := uuid.Parse(session.Metadata["user_id"])
	if err != nil {
		g.logger.Warn("Webhook event without a valid user_id", zap.Error(err))
		return nil, fmt.Errorf("%w: missing or invalid user_id metadata", models.ErrWebhookVerification)
	}

	return &PaymentEvent{Completed: true, UserID: userID}, nil
}
