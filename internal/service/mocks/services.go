package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"espectral-server/internal/models"
	"espectral-server/internal/service"
)

// Mock AuthService
type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, username, password string) (*service.TokenDetails, error) {
	args := m.Called(ctx, username, password)
	tokens, _ := args.Get(0).(*service.TokenDetails)
	return tokens, args.Error(1)
}

func (m *AuthService) VerifyAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)
	return claims, args.Error(1)
}

// Mock GameService
type GameService struct {
	mock.Mock
}

func (m *GameService) StartSession(ctx context.Context, userID uuid.UUID, scenarioID string) (*service.StartResult, error) {
	args := m.Called(ctx, userID, scenarioID)
	result, _ := args.Get(0).(*service.StartResult)
	return result, args.Error(1)
}

func (m *GameService) SubmitAction(ctx context.Context, userID, sessionID uuid.UUID, action string) (*service.TurnResult, error) {
	args := m.Called(ctx, userID, sessionID, action)
	result, _ := args.Get(0).(*service.TurnResult)
	return result, args.Error(1)
}

func (m *GameService) ActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*models.GameSession)
	return session, args.Error(1)
}

func (m *GameService) Narrate(ctx context.Context, userID, sessionID uuid.UUID) (io.ReadCloser, error) {
	args := m.Called(ctx, userID, sessionID)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// Mock BillingService
type BillingService struct {
	mock.Mock
}

func (m *BillingService) CreateCheckout(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (int, error) {
	args := m.Called(ctx, payload, signature)
	return args.Int(0), args.Error(1)
}
