package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"espectral-server/internal/models"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) CreditTokens(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	args := m.Called(ctx, id, amount)
	return args.Int(0), args.Error(1)
}

// Mock SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) CreateSession(ctx context.Context, session *models.GameSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*models.GameSession)
	return session, args.Error(1)
}

func (m *SessionRepository) GetActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*models.GameSession)
	return session, args.Error(1)
}

func (m *SessionRepository) CommitTurn(ctx context.Context, sessionID, userID uuid.UUID, expectedTurn int, entry string) (int, error) {
	args := m.Called(ctx, sessionID, userID, expectedTurn, entry)
	return args.Int(0), args.Error(1)
}

// Mock NarrativeCache
type NarrativeCache struct {
	mock.Mock
}

func (m *NarrativeCache) SetLastNarrative(ctx context.Context, sessionID uuid.UUID, text string) error {
	args := m.Called(ctx, sessionID, text)
	return args.Error(0)
}

func (m *NarrativeCache) GetLastNarrative(ctx context.Context, sessionID uuid.UUID) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}
