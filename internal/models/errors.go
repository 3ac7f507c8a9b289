package models

import "errors"

// Application-wide standard errors
var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Scenario & Session Errors
	ErrScenarioNotFound   = errors.New("scenario not found")
	ErrSessionNotFound    = errors.New("game session not found")
	ErrSessionNotActive   = errors.New("game session is not active")
	ErrTurnConflict       = errors.New("turn was committed concurrently")
	ErrEmptyAction        = errors.New("player action is empty")
	ErrInsufficientTokens = errors.New("not enough tokens")

	// External Adapter Errors
	ErrNarrationUnavailable = errors.New("narrative generation is unavailable")
	ErrVoiceUnavailable     = errors.New("voice synthesis is unavailable")
	ErrWebhookVerification  = errors.New("webhook signature verification failed")
)
