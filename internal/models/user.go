package models

import (
	"time"

	"github.com/google/uuid"
)

// Token ledger policy. A turn always costs one token; a confirmed
// payment always credits a fixed pack.
const (
	StartingTokenBalance = 10
	TokensPerTurn        = 1
	TokensPerPurchase    = 20
)

// User represents a registered player.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never serialized
	TokenBalance int       `db:"token_balance" json:"tokens"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
