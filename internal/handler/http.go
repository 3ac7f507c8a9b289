// Package handler exposes the HTTP surface: auth, scenario catalog,
// narrative sessions, voice playback and billing.
package handler

import (
	"github.com/gin-gonic/gin"

	"espectral-server/internal/repository"
	"espectral-server/internal/service"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	authService    service.AuthService
	gameService    service.GameService
	billingService service.BillingService
	userRepo       repository.UserRepository
}

// New creates the HTTP handler set.
func New(
	authService service.AuthService,
	gameService service.GameService,
	billingService service.BillingService,
	userRepo repository.UserRepository,
) *Handler {
	return &Handler{
		authService:    authService,
		gameService:    gameService,
		billingService: billingService,
		userRepo:       userRepo,
	}
}

// RegisterRoutes attaches all routes to the router. rateLimiter guards
// the endpoints that hit external providers or credentials.
func (h *Handler) RegisterRoutes(router *gin.Engine, rateLimiter gin.HandlerFunc) {
	authGroup := router.Group("/api/auth")
	if rateLimiter != nil {
		authGroup.Use(rateLimiter)
	}
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	// The billing webhook authenticates by signature, not by bearer token.
	router.POST("/billing/webhook", h.billingWebhook)

	protected := router.Group("/api")
	protected.Use(h.AuthMiddleware())
	{
		protected.GET("/me", h.getMe)
		protected.GET("/scenarios", h.listScenarios)

		protected.POST("/sessions", h.startSession)
		protected.GET("/sessions/current", h.currentSession)
		if rateLimiter != nil {
			protected.POST("/sessions/:session_id/actions", rateLimiter, h.submitAction)
		} else {
			protected.POST("/sessions/:session_id/actions", h.submitAction)
		}
		protected.GET("/sessions/:session_id/voice", h.voice)

		protected.POST("/billing/checkout", h.createCheckout)
	}
}
