package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"espectral-server/internal/models"
	"espectral-server/internal/scenario"
)

func (h *Handler) listScenarios(c *gin.Context) {
	defs := scenario.List()

	out := make([]scenarioResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, scenarioResponse{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}

func (h *Handler) startSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.gameService.StartSession(c.Request.Context(), userID, req.ScenarioID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	sessionsStartedTotal.WithLabelValues(req.ScenarioID).Inc()

	c.JSON(http.StatusCreated, startSessionResponse{
		SessionID: result.Session.ID.String(),
		Turn:      result.Session.Turn,
		Narrative: result.Narrative,
	})
}

func (h *Handler) currentSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	session, err := h.gameService.ActiveSession(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, currentSessionResponse{
		SessionID:  session.ID.String(),
		ScenarioID: session.ScenarioID,
		Turn:       session.Turn,
		Transcript: session.Transcript,
	})
}

func (h *Handler) submitAction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid session ID format"})
		return
	}

	var req submitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.gameService.SubmitAction(c.Request.Context(), userID, sessionID, req.Action)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	turnsPlayedTotal.Inc()

	c.JSON(http.StatusOK, turnResponse{
		Narrative: result.Narrative,
		Turn:      result.Turn,
		Tokens:    result.TokensRemaining,
	})
}

func (h *Handler) voice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: "Invalid session ID format"})
		return
	}

	audio, err := h.gameService.Narrate(c.Request.Context(), userID, sessionID)
	if err != nil {
		voiceRequestsTotal.WithLabelValues("error").Inc()
		handleServiceError(c, err)
		return
	}
	defer audio.Close()

	voiceRequestsTotal.WithLabelValues("ok").Inc()

	c.Header("Content-Type", "audio/mpeg")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		_, copyErr := io.Copy(w, audio)
		if copyErr != nil {
			zap.L().Warn("Voice stream interrupted", zap.Error(copyErr))
		}
		return false
	})
}
