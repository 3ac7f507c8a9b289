package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"espectral-server/internal/models"
)

// Compile-time check to ensure pgSessionRepository implements SessionRepository
var _ SessionRepository = (*pgSessionRepository)(nil)

type pgSessionRepository struct {
	db     *pgxpool.Pool
	tx     *TxHelper
	logger *zap.Logger
}

// NewPgSessionRepository creates a new PostgreSQL-backed SessionRepository.
func NewPgSessionRepository(db *pgxpool.Pool, logger *zap.Logger) SessionRepository {
	return &pgSessionRepository{
		db:     db,
		tx:     NewTxHelper(db, logger),
		logger: logger.Named("PgSessionRepo"),
	}
}

const sessionColumns = `id, user_id, scenario_id, transcript, turn, is_active, created_at, updated_at`

func scanSession(row pgx.Row) (*models.GameSession, error) {
	s := &models.GameSession{}
	err := row.Scan(&s.ID, &s.UserID, &s.ScenarioID, &s.Transcript, &s.Turn, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSession deactivates the user's currently active sessions and
// inserts the new one. Both statements run in one transaction so the
// one-active-session invariant holds at every observable instant.
func (r *pgSessionRepository) CreateSession(ctx context.Context, session *models.GameSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx DBTX) error {
		deactivate := `UPDATE game_sessions SET is_active = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_active`
		tag, err := tx.Exec(ctx, deactivate, session.UserID)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous sessions: %w", err)
		}
		if tag.RowsAffected() > 0 {
			r.logger.Debug("Deactivated previous sessions",
				zap.String("userID", session.UserID.String()),
				zap.Int64("count", tag.RowsAffected()))
		}

		insert := `INSERT INTO game_sessions (id, user_id, scenario_id, transcript, turn, is_active)
		           VALUES ($1, $2, $3, $4, $5, TRUE)
		           RETURNING created_at, updated_at`
		err = tx.QueryRow(ctx, insert, session.ID, session.UserID, session.ScenarioID, session.Transcript, session.Turn).
			Scan(&session.CreatedAt, &session.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert game session: %w", err)
		}
		session.IsActive = true
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to create game session", zap.Error(err),
			zap.String("userID", session.UserID.String()),
			zap.String("scenarioID", session.ScenarioID))
		return err
	}

	r.logger.Info("Game session created",
		zap.String("sessionID", session.ID.String()),
		zap.String("userID", session.UserID.String()),
		zap.String("scenarioID", session.ScenarioID))
	return nil
}

// GetSessionByID retrieves a session by its ID.
func (r *pgSessionRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Session not found", zap.String("sessionID", id.String()))
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session from postgres", zap.Error(err), zap.String("sessionID", id.String()))
		return nil, fmt.Errorf("failed to get session from postgres: %w", err)
	}
	return session, nil
}

// GetActiveSession retrieves the user's single active session.
func (r *pgSessionRepository) GetActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE user_id = $1 AND is_active`
	session, err := scanSession(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get active session from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to get active session from postgres: %w", err)
	}
	return session, nil
}

// CommitTurn performs the atomic turn commit: transcript append, turn
// increment and token debit in one transaction. The session update is
// guarded by the expected turn so a writer that lost the race affects
// zero rows and nothing is mutated; the debit is guarded by a positive
// balance so no overdraft path exists.
func (r *pgSessionRepository) CommitTurn(ctx context.Context, sessionID, userID uuid.UUID, expectedTurn int, entry string) (int, error) {
	var balance int

	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx DBTX) error {
		update := `UPDATE game_sessions
		           SET transcript = transcript || $3, turn = turn + 1, updated_at = NOW()
		           WHERE id = $1 AND turn = $2 AND is_active`
		tag, err := tx.Exec(ctx, update, sessionID, expectedTurn, entry)
		if err != nil {
			return fmt.Errorf("failed to update game session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Either the session went inactive or another writer
			// already committed this turn.
			return models.ErrTurnConflict
		}

		debit := `UPDATE users SET token_balance = token_balance - $2 WHERE id = $1 AND token_balance >= $2 RETURNING token_balance`
		err = tx.QueryRow(ctx, debit, userID, models.TokensPerTurn).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrInsufficientTokens
			}
			return fmt.Errorf("failed to debit token: %w", err)
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, models.ErrTurnConflict) && !errors.Is(err, models.ErrInsufficientTokens) {
			r.logger.Error("Failed to commit turn", zap.Error(err),
				zap.String("sessionID", sessionID.String()),
				zap.Int("expectedTurn", expectedTurn))
		}
		return 0, err
	}

	r.logger.Info("Turn committed",
		zap.String("sessionID", sessionID.String()),
		zap.Int("turn", expectedTurn+1),
		zap.Int("tokensRemaining", balance))
	return balance, nil
}
