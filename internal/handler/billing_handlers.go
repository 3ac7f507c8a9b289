package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"espectral-server/internal/models"
)

// maxWebhookBodyBytes bounds the payload Stripe is allowed to deliver.
const maxWebhookBodyBytes = 65536

func (h *Handler) createCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	url, err := h.billingService.CreateCheckout(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{CheckoutURL: url})
}

func (h *Handler) billingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Failed to read webhook payload"})
		return
	}

	credited, err := h.billingService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if credited > 0 {
		tokensCreditedTotal.Add(float64(credited))
		zap.L().Info("Tokens credited from checkout webhook", zap.Int("amount", credited))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
