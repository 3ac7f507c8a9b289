// Package mocks provides hand-rolled testify mocks for the external
// collaborators of the service layer.
package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"espectral-server/internal/billing"
	"espectral-server/internal/prompt"
)

// Mock ai.Generator
type Generator struct {
	mock.Mock
}

func (m *Generator) Generate(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error) {
	args := m.Called(ctx, messages, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

// Mock voice.Synthesizer
type Synthesizer struct {
	mock.Mock
}

func (m *Synthesizer) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *Synthesizer) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	args := m.Called(ctx, text)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

// Mock billing.PaymentGateway
type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) CreateCheckout(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *PaymentGateway) ParseWebhookEvent(payload []byte, signature string) (*billing.PaymentEvent, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*billing.PaymentEvent)
	return event, args.Error(1)
}
