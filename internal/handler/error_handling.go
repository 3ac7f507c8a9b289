package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"espectral-server/internal/models"
)

// handleServiceError maps service errors onto HTTP statuses. Policy
// failures are specific so the client knows how to act; opaque
// failures stay generic.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeWrongCredentials, Message: "Invalid username or password"}
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeDuplicateUser, Message: "Username already exists"}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeUserNotFound, Message: "Session expired, please log in again"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, models.ErrScenarioNotFound):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeScenarioNotFound, Message: "Unknown scenario"}
	case errors.Is(err, models.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeSessionNotFound, Message: "Game session not found"}
	case errors.Is(err, models.ErrSessionNotActive):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeSessionNotActive, Message: "Game session is not active"}
	case errors.Is(err, models.ErrTurnConflict):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeTurnConflict, Message: "Another action for this session is already in flight"}
	case errors.Is(err, models.ErrEmptyAction):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Message: "Action must not be empty"}
	case errors.Is(err, models.ErrInsufficientTokens):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Code: models.ErrCodeNoTokens, Message: "Not enough tokens"}
	case errors.Is(err, models.ErrNarrationUnavailable):
		narrationFailuresTotal.Inc()
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Code: models.ErrCodeNarration, Message: "Could not generate the next scene, please retry"}
	case errors.Is(err, models.ErrVoiceUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeVoice, Message: "Voice playback is unavailable"}
	case errors.Is(err, models.ErrWebhookVerification):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeWebhookSignature, Message: "Webhook verification failed"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
