// Package gamesession tracks a player's live game state across spins: the
// hash-chain seeds, the running nonce, and — while a free-spin round is
// active — the free-spin session and its carried multiplier. It is grounded
// in the base game's domain/session model (bet/balance bookkeeping) merged
// with the provably-fair seed-chain fields from its RNG package.
package gamesession

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/freespins"
	"github.com/infinitystorm/server/internal/money"
)

// FreeSpinState makes *freespins.Session JSONB-storable, the same pattern
// spinresult uses for grids/cascades. Nil marshals to the JSON literal
// null/absent, which Scan treats as "no active free-spin round".
type FreeSpinState struct {
	*freespins.Session
}

// Scan implements sql.Scanner.
func (f *FreeSpinState) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || bytes == nil {
		f.Session = nil
		return nil
	}
	var s freespins.Session
	if err := json.Unmarshal(bytes, &s); err != nil {
		return err
	}
	f.Session = &s
	return nil
}

// Value implements driver.Valuer.
func (f FreeSpinState) Value() (driver.Value, error) {
	if f.Session == nil {
		return nil, nil
	}
	return json.Marshal(f.Session)
}

// Session is the live per-player game state the engine and wallet consult
// on every spin. Exactly one Session is active per player at a time — the
// per-player serialization region (only one spin in flight for a given
// player) is enforced by the service layer, not by this type.
type Session struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	PlayerID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"playerId"`
	ServerSeed      string     `gorm:"type:varchar(64);not null" json:"-"`
	ServerSeedHash  string     `gorm:"type:varchar(64);not null" json:"serverSeedHash"`
	ClientSeed      string     `gorm:"type:varchar(64);not null" json:"clientSeed"`
	Nonce           int64      `gorm:"not null;default:0" json:"nonce"`
	PrevSpinHash    string     `gorm:"type:varchar(64);not null" json:"prevSpinHash"`
	FreeSpinsActive bool       `gorm:"default:false;index" json:"freeSpinsActive"`
	StartingBalance money.Amount `gorm:"type:varchar(32)" json:"startingBalance"`
	TotalWagered    money.Amount `gorm:"type:varchar(32);default:'0.00'" json:"totalWagered"`
	TotalWon        money.Amount `gorm:"type:varchar(32);default:'0.00'" json:"totalWon"`
	CreatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	// FreeSpin holds the active free-spin round's state as a JSONB column.
	// Its inner pointer is non-nil only while FreeSpinsActive is true.
	FreeSpin FreeSpinState `gorm:"type:jsonb" json:"freeSpin,omitempty"`
}

// TableName pins the GORM table name.
func (Session) TableName() string { return "game_sessions" }

// NextNonce returns the nonce to use for the next spin and advances the
// counter. Must be called while the per-player serialization lock is held.
func (s *Session) NextNonce() int64 {
	n := s.Nonce
	s.Nonce++
	return n
}

// CarriedMultiplier returns the free-spin accumulator value to apply to the
// next spin, or 0 outside of an active free-spin round.
func (s *Session) CarriedMultiplier() int {
	if s.FreeSpin.Session == nil {
		return 0
	}
	return s.FreeSpin.Accumulator.Carried
}
