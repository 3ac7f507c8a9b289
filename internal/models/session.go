package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlayerActionMarker separates a committed player action from the
// narrator's reply inside the stored transcript. The format is part of
// the persisted data and must not change.
const PlayerActionMarker = ">> Jugador: "

// GameSession is a single narrative playthrough. The transcript is
// append-only: committed text is never edited or removed. At most one
// session per user is active at any time.
type GameSession struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"userId"`
	ScenarioID string    `db:"scenario_id" json:"scenarioId"`
	Transcript string    `db:"transcript" json:"transcript"`
	Turn       int       `db:"turn" json:"turn"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// TurnEntry renders a player action plus the narrator's reply in the
// form appended to the transcript on every committed turn.
func TurnEntry(action, narrative string) string {
	return "\n\n" + PlayerActionMarker + action + "\n\n" + narrative
}

// LastNarrative returns the most recent narrator text in the
// transcript: everything after the final player-action marker, or the
// whole transcript when no action has been committed yet (turn 1).
func (s *GameSession) LastNarrative() string {
	idx := strings.LastIndex(s.Transcript, PlayerActionMarker)
	if idx < 0 {
		return s.Transcript
	}
	rest := s.Transcript[idx+len(PlayerActionMarker):]
	if sep := strings.Index(rest, "\n\n"); sep >= 0 {
		return rest[sep+2:]
	}
	return rest
}
