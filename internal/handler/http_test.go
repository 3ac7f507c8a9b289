package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"espectral-server/internal/handler"
	"espectral-server/internal/models"
	repoMocks "espectral-server/internal/repository/mocks"
	"espectral-server/internal/service"
	svcMocks "espectral-server/internal/service/mocks"
)

type testEnv struct {
	router         *gin.Engine
	authService    *svcMocks.AuthService
	gameService    *svcMocks.GameService
	billingService *svcMocks.BillingService
	userRepo       *repoMocks.UserRepository
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		authService:    new(svcMocks.AuthService),
		gameService:    new(svcMocks.GameService),
		billingService: new(svcMocks.BillingService),
		userRepo:       new(repoMocks.UserRepository),
	}

	router := gin.New()
	h := handler.New(env.authService, env.gameService, env.billingService, env.userRepo)
	h.RegisterRoutes(router, nil)
	env.router = router
	return env
}

// authorize wires the bearer token "valid" to the given user id.
func (e *testEnv) authorize(userID uuid.UUID) {
	e.authService.On("VerifyAccessToken", "valid").
		Return(&service.Claims{UserID: userID, RegisteredClaims: jwt.RegisteredClaims{}}, nil)
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's
// Context.Stream requires, which httptest.ResponseRecorder lacks.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (c *closeNotifyRecorder) CloseNotify() <-chan bool { return c.closed }

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(&closeNotifyRecorder{w, make(chan bool, 1)}, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("Register success", func(t *testing.T) {
		env := newTestEnv()
		userID := uuid.New()
		env.authService.On("Register", mock.Anything, "maria", "password123").
			Return(&models.User{ID: userID, Username: "maria", TokenBalance: 10}, nil).Once()

		w := env.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "maria", "password": "password123"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("Register duplicate", func(t *testing.T) {
		env := newTestEnv()
		env.authService.On("Register", mock.Anything, "maria", "password123").
			Return(nil, models.ErrUserAlreadyExists).Once()

		w := env.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "maria", "password": "password123"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, models.ErrCodeDuplicateUser, errCode(t, w))
	})

	t.Run("Register rejects short username locally", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "ab", "password": "password123"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.authService.AssertNotCalled(t, "Register")
	})

	t.Run("Login wrong credentials", func(t *testing.T) {
		env := newTestEnv()
		env.authService.On("Login", mock.Anything, "maria", "wrong").
			Return(nil, models.ErrInvalidCredentials).Once()

		w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "maria", "password": "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, models.ErrCodeWrongCredentials, errCode(t, w))
	})

	t.Run("Protected route without token", func(t *testing.T) {
		env := newTestEnv()

		w := env.do(http.MethodGet, "/api/me", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Protected route with expired token", func(t *testing.T) {
		env := newTestEnv()
		env.authService.On("VerifyAccessToken", "stale").Return(nil, models.ErrTokenExpired).Once()

		w := env.do(http.MethodGet, "/api/me", "stale", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, models.ErrCodeTokenExpired, errCode(t, w))
	})
}

func TestGameEndpoints(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("List scenarios", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)

		w := env.do(http.MethodGet, "/api/scenarios", "valid", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "casa_embrujada")
		assert.Contains(t, w.Body.String(), "ouija_maldita")
	})

	t.Run("Start session", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("StartSession", mock.Anything, userID, "casa_embrujada").
			Return(&service.StartResult{
				Session:   &models.GameSession{ID: sessionID, UserID: userID, ScenarioID: "casa_embrujada", Turn: 1},
				Narrative: "La reja se cierra a tu espalda.",
			}, nil).Once()

		w := env.do(http.MethodPost, "/api/sessions", "valid", gin.H{"scenario_id": "casa_embrujada"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), sessionID.String())
		assert.Contains(t, w.Body.String(), "La reja se cierra a tu espalda.")
	})

	t.Run("Start session with unknown scenario", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("StartSession", mock.Anything, userID, "catacumbas").
			Return(nil, models.ErrScenarioNotFound).Once()

		w := env.do(http.MethodPost, "/api/sessions", "valid", gin.H{"scenario_id": "catacumbas"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeScenarioNotFound, errCode(t, w))
	})

	t.Run("Submit action", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("SubmitAction", mock.Anything, userID, sessionID, "Enciendo la linterna").
			Return(&service.TurnResult{Narrative: "El haz revela arañazos en la pared.", Turn: 2, TokensRemaining: 9}, nil).Once()

		w := env.do(http.MethodPost, fmt.Sprintf("/api/sessions/%s/actions", sessionID), "valid", gin.H{"action": "Enciendo la linterna"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Narrative string `json:"narrative"`
			Turn      int    `json:"turn"`
			Tokens    int    `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Turn)
		assert.Equal(t, 9, resp.Tokens)
	})

	t.Run("Submit action status mapping", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"empty action", models.ErrEmptyAction, http.StatusBadRequest, models.ErrCodeValidation},
			{"insufficient tokens", models.ErrInsufficientTokens, http.StatusForbidden, models.ErrCodeNoTokens},
			{"session not found", models.ErrSessionNotFound, http.StatusNotFound, models.ErrCodeSessionNotFound},
			{"session not active", models.ErrSessionNotActive, http.StatusConflict, models.ErrCodeSessionNotActive},
			{"turn conflict", models.ErrTurnConflict, http.StatusConflict, models.ErrCodeTurnConflict},
			{"narration unavailable", models.ErrNarrationUnavailable, http.StatusBadGateway, models.ErrCodeNarration},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				env := newTestEnv()
				env.authorize(userID)
				env.gameService.On("SubmitAction", mock.Anything, userID, sessionID, mock.AnythingOfType("string")).
					Return(nil, tc.err).Once()

				w := env.do(http.MethodPost, fmt.Sprintf("/api/sessions/%s/actions", sessionID), "valid", gin.H{"action": "algo"})

				assert.Equal(t, tc.status, w.Code)
				assert.Equal(t, tc.code, errCode(t, w))
			})
		}
	})

	t.Run("Current session when none is active", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("ActiveSession", mock.Anything, userID).
			Return(nil, models.ErrSessionNotFound).Once()

		w := env.do(http.MethodGet, "/api/sessions/current", "valid", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Voice streams audio", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("Narrate", mock.Anything, userID, sessionID).
			Return(io.NopCloser(strings.NewReader("mp3-bytes")), nil).Once()

		w := env.do(http.MethodGet, fmt.Sprintf("/api/sessions/%s/voice", sessionID), "valid", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "mp3-bytes", w.Body.String())
	})

	t.Run("Voice unavailable", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.gameService.On("Narrate", mock.Anything, userID, sessionID).
			Return(nil, models.ErrVoiceUnavailable).Once()

		w := env.do(http.MethodGet, fmt.Sprintf("/api/sessions/%s/voice", sessionID), "valid", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, models.ErrCodeVoice, errCode(t, w))
	})
}

func TestBillingEndpoints(t *testing.T) {
	userID := uuid.New()

	t.Run("Checkout", func(t *testing.T) {
		env := newTestEnv()
		env.authorize(userID)
		env.billingService.On("CreateCheckout", mock.Anything, userID).
			Return("https://checkout.stripe.com/pay/cs_test_123", nil).Once()

		w := env.do(http.MethodPost, "/api/billing/checkout", "valid", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "checkout.stripe.com")
	})

	t.Run("Webhook with valid signature", func(t *testing.T) {
		env := newTestEnv()
		env.billingService.On("HandleWebhook", mock.Anything, mock.AnythingOfType("[]uint8"), "t=1,v1=abc").
			Return(models.TokensPerPurchase, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env.billingService.AssertExpectations(t)
	})

	t.Run("Webhook with bad signature", func(t *testing.T) {
		env := newTestEnv()
		env.billingService.On("HandleWebhook", mock.Anything, mock.AnythingOfType("[]uint8"), "bad").
			Return(0, models.ErrWebhookVerification).Once()

		req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(`{}`))
		req.Header.Set("Stripe-Signature", "bad")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrCodeWebhookSignature, errCode(t, w))
	})
}

func TestGetMe(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	env.authorize(userID)
	env.userRepo.On("GetUserByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Username: "maria", TokenBalance: 7}, nil).Once()

	w := env.do(http.MethodGet, "/api/me", "valid", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Username string `json:"username"`
		Tokens   int    `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "maria", resp.Username)
	assert.Equal(t, 7, resp.Tokens)
}
