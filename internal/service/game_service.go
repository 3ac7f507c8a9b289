package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"espectral-server/internal/ai"
	"espectral-server/internal/models"
	"espectral-server/internal/prompt"
	"espectral-server/internal/repository"
	"espectral-server/internal/scenario"
	"espectral-server/internal/voice"
)

// StartResult is returned when a new session is opened.
type StartResult struct {
	Session   *models.GameSession `json:"session"`
	Narrative string              `json:"narrative"`
}

// TurnResult is returned for a committed player turn.
type TurnResult struct {
	Narrative       string `json:"narrative"`
	Turn            int    `json:"turn"`
	TokensRemaining int    `json:"tokens"`
}

// GameService is the session state machine. It is the only component
// that mutates a narrative session: it validates preconditions,
// composes the prompt, calls the generator and commits the turn. A
// failed generation leaves the session exactly as it was.
type GameService interface {
	StartSession(ctx context.Context, userID uuid.UUID, scenarioID string) (*StartResult, error)
	SubmitAction(ctx context.Context, userID, sessionID uuid.UUID, action string) (*TurnResult, error)
	ActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error)
	Narrate(ctx context.Context, userID, sessionID uuid.UUID) (io.ReadCloser, error)
}

// Compile-time check to ensure gameServiceImpl implements GameService
var _ GameService = (*gameServiceImpl)(nil)

type gameServiceImpl struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	cache       repository.NarrativeCache
	generator   ai.Generator
	voice       voice.Synthesizer
	locks       keyedMutex
	logger      *zap.Logger
}

// NewGameService creates the session state machine.
func NewGameService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	cache repository.NarrativeCache,
	generator ai.Generator,
	synthesizer voice.Synthesizer,
	logger *zap.Logger,
) GameService {
	return &gameServiceImpl{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		cache:       cache,
		generator:   generator,
		voice:       synthesizer,
		logger:      logger.Named("GameService"),
	}
}

// keyedMutex serializes work per key. Turn progression for one session
// must be linearizable: the whole validate-generate-commit sequence
// runs under the session's lock so two near-simultaneous submissions
// can never both read the same turn.
type keyedMutex struct {
	mu sync.Map // key -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.mu.LoadOrStore(key, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// StartSession validates the scenario, generates the opening narrative
// and creates the session at turn 1, superseding any previously active
// session for the user. When generation fails nothing is persisted.
func (s *gameServiceImpl) StartSession(ctx context.Context, userID uuid.UUID, scenarioID string) (*StartResult, error) {
	def, err := scenario.Get(scenarioID)
	if err != nil {
		s.logger.Warn("Session start for unknown scenario", zap.String("scenarioID", scenarioID), zap.String("userID", userID.String()))
		return nil, err
	}

	unlock := s.locks.lock("user:" + userID.String())
	defer unlock()

	// Generate before touching storage so a generator failure cannot
	// leave a half-created session behind.
	opening, err := s.generator.Generate(ctx, prompt.Opening(def), prompt.MaxCompletionTokens, prompt.Temperature)
	if err != nil {
		s.logger.Error("Opening narrative generation failed", zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("scenarioID", scenarioID))
		return nil, fmt.Errorf("opening generation: %w", models.ErrNarrationUnavailable)
	}
	opening = strings.TrimSpace(opening)

	session := &models.GameSession{
		UserID:     userID,
		ScenarioID: def.ID,
		Transcript: opening,
		Turn:       1,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.cacheLastNarrative(ctx, session.ID, opening)

	s.logger.Info("Session started",
		zap.String("sessionID", session.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("scenarioID", def.ID))
	return &StartResult{Session: session, Narrative: opening}, nil
}

// SubmitAction plays one turn. Preconditions are checked before any
// external call; each violation fails fast with its specific sentinel
// and mutates nothing. On generator failure the token is not debited,
// the turn is not incremented and the action is not recorded, so the
// submission is safe to retry.
func (s *gameServiceImpl) SubmitAction(ctx context.Context, userID, sessionID uuid.UUID, action string) (*TurnResult, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, models.ErrEmptyAction
	}

	unlock := s.locks.lock("session:" + sessionID.String())
	defer unlock()

	session, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		// Do not reveal other users' session ids.
		return nil, models.ErrSessionNotFound
	}
	if !session.IsActive {
		return nil, models.ErrSessionNotActive
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TokenBalance < models.TokensPerTurn {
		s.logger.Warn("Action rejected: insufficient tokens",
			zap.String("userID", userID.String()),
			zap.String("sessionID", sessionID.String()))
		return nil, models.ErrInsufficientTokens
	}

	def, err := scenario.Get(session.ScenarioID)
	if err != nil {
		return nil, err
	}

	messages := prompt.Continuation(def.Title, session.Turn, session.Transcript, action)
	narrative, err := s.generator.Generate(ctx, messages, prompt.MaxCompletionTokens, prompt.Temperature)
	if err != nil {
		s.logger.Error("Continuation generation failed", zap.Error(err),
			zap.String("sessionID", sessionID.String()),
			zap.Int("turn", session.Turn))
		return nil, fmt.Errorf("continuation generation: %w", models.ErrNarrationUnavailable)
	}
	narrative = strings.TrimSpace(narrative)

	balance, err := s.sessionRepo.CommitTurn(ctx, sessionID, userID, session.Turn, models.TurnEntry(action, narrative))
	if err != nil {
		return nil, err
	}

	s.cacheLastNarrative(ctx, sessionID, narrative)

	return &TurnResult{
		Narrative:       narrative,
		Turn:            session.Turn + 1,
		TokensRemaining: balance,
	}, nil
}

// ActiveSession returns the user's single active session.
func (s *gameServiceImpl) ActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error) {
	return s.sessionRepo.GetActiveSession(ctx, userID)
}

// Narrate synthesizes audio for the most recent narrative of the
// session. Voice failures are reported but never affect the narrative
// state.
func (s *gameServiceImpl) Narrate(ctx context.Context, userID, sessionID uuid.UUID) (io.ReadCloser, error) {
	if s.voice == nil || !s.voice.Enabled() {
		return nil, models.ErrVoiceUnavailable
	}

	session, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, models.ErrSessionNotFound
	}

	text, err := s.cache.GetLastNarrative(ctx, sessionID)
	if err != nil {
		// Cache miss or cache failure: derive from the transcript.
		text = session.LastNarrative()
	}
	if text == "" {
		return nil, models.ErrVoiceUnavailable
	}

	stream, err := s.voice.Synthesize(ctx, text)
	if err != nil {
		s.logger.Error("Voice synthesis failed", zap.Error(err), zap.String("sessionID", sessionID.String()))
		return nil, fmt.Errorf("voice synthesis: %w", models.ErrVoiceUnavailable)
	}
	return stream, nil
}

func (s *gameServiceImpl) cacheLastNarrative(ctx context.Context, sessionID uuid.UUID, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetLastNarrative(ctx, sessionID, text); err != nil {
		// Non-fatal: Narrate falls back to the transcript.
		s.logger.Warn("Failed to cache last narrative", zap.Error(err), zap.String("sessionID", sessionID.String()))
	}
}
