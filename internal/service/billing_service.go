package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"espectral-server/internal/billing"
	"espectral-server/internal/models"
	"espectral-server/internal/repository"
)

// BillingService initiates checkouts and applies verified payment
// confirmations to the token ledger.
type BillingService interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID) (string, error)
	// HandleWebhook verifies the raw event and, for a completed
	// checkout, credits the token pack. It reports how many tokens
	// were credited. Anything unverified is rejected with no side
	// effect.
	HandleWebhook(ctx context.Context, payload []byte, signature string) (int, error)
}

// Compile-time check to ensure billingServiceImpl implements BillingService
var _ BillingService = (*billingServiceImpl)(nil)

type billingServiceImpl struct {
	gateway  billing.PaymentGateway
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService.
func NewBillingService(gateway billing.PaymentGateway, userRepo repository.UserRepository, logger *zap.Logger) BillingService {
	return &billingServiceImpl{
		gateway:  gateway,
		userRepo: userRepo,
		logger:   logger.Named("BillingService"),
	}
}

// CreateCheckout returns the hosted payment page URL for the token pack.
func (s *billingServiceImpl) CreateCheckout(ctx context.Context, userID uuid.UUID) (string, error) {
	// The user must exist before we hand their id to the provider.
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return "", err
	}
	return s.gateway.CreateCheckout(userID)
}

// HandleWebhook verifies and applies one billing event.
func (s *billingServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (int, error) {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		return 0, err
	}
	if !event.Completed {
		return 0, nil
	}

	balance, err := s.userRepo.CreditTokens(ctx, event.UserID, models.TokensPerPurchase)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// The event is authentic but the account is gone.
			// Acknowledge it so the provider stops retrying.
			s.logger.Warn("Confirmed payment for unknown user, event acknowledged without credit",
				zap.String("userID", event.UserID.String()))
			return 0, nil
		}
		s.logger.Error("Failed to credit tokens for confirmed payment",
			zap.Error(err), zap.String("userID", event.UserID.String()))
		return 0, err
	}

	s.logger.Info("Payment confirmed, tokens credited",
		zap.String("userID", event.UserID.String()),
		zap.Int("credited", models.TokensPerPurchase),
		zap.Int("balance", balance))
	return models.TokensPerPurchase, nil
}
