// Package store persists sessions and round history so simulations
// and play sessions can be reviewed later.
package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// DB represents the database interface
type DB interface {
	Close() error
	Migrate() error
	SaveSession(session *Session) error
	SaveRounds(sessionID string, rounds []RoundRecord) error
	GetSession(id string) (*Session, error)
	ListSessions(limit int) ([]*Session, error)
	GetRounds(sessionID string, limit, offset int) ([]RoundRecord, error)
	SessionSummary(sessionID string) (*Summary, error)
}

// Session represents one sitting at the table: a rules profile plus
// the rounds played under it.
type Session struct {
	ID          string    `json:"id" db:"id"`
	Label       string    `json:"label" db:"label"`
	Decks       int       `json:"decks" db:"decks"`
	Penetration int       `json:"penetration" db:"penetration"`
	Rules       string    `json:"rules" db:"rules"` // JSON string
	Seed        int64     `json:"seed" db:"seed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RoundRecord represents a single completed round. Monetary amounts
// are stored as decimal strings so fractional blackjack payouts
// survive the round trip exactly.
type RoundRecord struct {
	ID           int64           `json:"id" db:"id"`
	SessionID    string          `json:"session_id" db:"session_id"`
	Seq          int             `json:"seq" db:"seq"`
	Bet          int             `json:"bet" db:"bet"`
	Hands        int             `json:"hands" db:"hands"`
	Outcomes     string          `json:"outcomes" db:"outcomes"` // JSON string
	Net          decimal.Decimal `json:"net" db:"net"`
	InsuranceNet decimal.Decimal `json:"insurance_net" db:"insurance_net"`
}

// Summary aggregates a session's rounds.
type Summary struct {
	SessionID string          `json:"session_id"`
	Rounds    int             `json:"rounds"`
	Net       decimal.Decimal `json:"net"`
}
