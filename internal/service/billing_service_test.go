package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"espectral-server/internal/billing"
	"espectral-server/internal/models"
	repoMocks "espectral-server/internal/repository/mocks"
	"espectral-server/internal/service"
	svcMocks "espectral-server/internal/service/mocks"
)

func TestCreateCheckout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Returns checkout URL for existing user", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		userRepo.On("GetUserByID", ctx, userID).Return(&models.User{ID: userID}, nil).Once()
		gateway.On("CreateCheckout", userID).Return("https://checkout.stripe.com/pay/cs_test_123", nil).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		url, err := svc.CreateCheckout(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", url)
	})

	t.Run("Unknown user never reaches the provider", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		userRepo.On("GetUserByID", ctx, userID).Return(nil, models.ErrUserNotFound).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		_, err := svc.CreateCheckout(ctx, userID)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
		gateway.AssertNotCalled(t, "CreateCheckout")
	})
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	payload := []byte(`{"type":"checkout.session.completed"}`)
	signature := "t=1,v1=abc"

	t.Run("Completed checkout credits the pack", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		gateway.On("ParseWebhookEvent", payload, signature).
			Return(&billing.PaymentEvent{Completed: true, UserID: userID}, nil).Once()
		userRepo.On("CreditTokens", ctx, userID, models.TokensPerPurchase).Return(30, nil).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		credited, err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
		assert.Equal(t, models.TokensPerPurchase, credited)
		userRepo.AssertExpectations(t)
	})

	t.Run("Unverified event credits nothing", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		gateway.On("ParseWebhookEvent", payload, "bad").
			Return(nil, fmt.Errorf("signature mismatch: %w", models.ErrWebhookVerification)).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		credited, err := svc.HandleWebhook(ctx, payload, "bad")

		assert.ErrorIs(t, err, models.ErrWebhookVerification)
		assert.Zero(t, credited)
		userRepo.AssertNotCalled(t, "CreditTokens")
	})

	t.Run("Unknown user is acknowledged without credit", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		gateway.On("ParseWebhookEvent", payload, signature).
			Return(&billing.PaymentEvent{Completed: true, UserID: userID}, nil).Once()
		userRepo.On("CreditTokens", ctx, userID, models.TokensPerPurchase).
			Return(0, models.ErrUserNotFound).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		credited, err := svc.HandleWebhook(ctx, payload, signature)

		// The provider must see success or it retries the event forever.
		require.NoError(t, err)
		assert.Zero(t, credited)
	})

	t.Run("Ignored event type credits nothing", func(t *testing.T) {
		gateway := new(svcMocks.PaymentGateway)
		userRepo := new(repoMocks.UserRepository)

		gateway.On("ParseWebhookEvent", payload, signature).
			Return(&billing.PaymentEvent{Completed: false}, nil).Once()

		svc := service.NewBillingService(gateway, userRepo, zap.NewNop())
		credited, err := svc.HandleWebhook(ctx, payload, signature)

		require.NoError(t, err)
		assert.Zero(t, credited)
		userRepo.AssertNotCalled(t, "CreditTokens")
	})
}
