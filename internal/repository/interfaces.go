package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"espectral-server/internal/models"
)

// DBTX abstracts over *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository manages users and their token ledger.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// CreditTokens atomically adds amount to the user's balance and
	// returns the new balance.
	CreditTokens(ctx context.Context, id uuid.UUID, amount int) (int, error)
}

// SessionRepository manages narrative sessions. The mutating methods
// own the atomic commit boundaries of the session state machine: a
// turn or a session start either fully commits or leaves no trace.
type SessionRepository interface {
	// CreateSession deactivates the user's currently active sessions
	// and inserts the new one in a single transaction.
	CreateSession(ctx context.Context, session *models.GameSession) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	GetActiveSession(ctx context.Context, userID uuid.UUID) (*models.GameSession, error)
	// CommitTurn appends entry to the transcript, advances the turn and
	// debits one token, all in a single transaction. The update is
	// guarded by expectedTurn and the session's active flag; a stale
	// writer gets ErrTurnConflict and mutates nothing. Returns the
	// remaining token balance.
	CommitTurn(ctx context.Context, sessionID, userID uuid.UUID, expectedTurn int, entry string) (int, error)
}

// NarrativeCache stores the most recent narrative text per session for
// voice playback. Best-effort: a cache miss falls back to the
// transcript.
type NarrativeCache interface {
	SetLastNarrative(ctx context.Context, sessionID uuid.UUID, text string) error
	GetLastNarrative(ctx context.Context, sessionID uuid.UUID) (string, error)
}
