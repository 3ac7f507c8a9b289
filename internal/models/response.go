package models

// Machine-readable error codes returned alongside HTTP statuses.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeWrongCredentials = "WRONG_CREDENTIALS"
	ErrCodeDuplicateUser    = "DUPLICATE_USER"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeScenarioNotFound = "SCENARIO_NOT_FOUND"
	ErrCodeSessionNotFound  = "SESSION_NOT_FOUND"
	ErrCodeSessionNotActive = "SESSION_NOT_ACTIVE"
	ErrCodeTurnConflict     = "TURN_CONFLICT"
	ErrCodeNoTokens         = "NO_TOKENS"
	ErrCodeNarration        = "NARRATION_UNAVAILABLE"
	ErrCodeVoice            = "VOICE_UNAVAILABLE"
	ErrCodeWebhookSignature = "WEBHOOK_SIGNATURE_INVALID"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
