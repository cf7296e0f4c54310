// Package spinresult defines the canonical, immutable SpinResult the server
// emits for every spin: the exact grid/cascade state, the RNG provenance
// needed to independently verify it, and the wallet effect it produced.
// Grid/Cascades are stored the way the base game stores them — JSONB columns
// via database/sql/driver Scan/Value — with the underlying types swapped for
// the cluster-pays grid and cascade-step shapes.
package spinresult

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
)

// CascadeSteps is a JSONB-storable slice of cascade steps.
type CascadeSteps []engine.CascadeStep

// Scan implements sql.Scanner.
func (c *CascadeSteps) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || bytes == nil {
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// Value implements driver.Valuer.
func (c CascadeSteps) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// JSONGrid is grid.Grid made JSONB-storable.
type JSONGrid grid.Grid

// Scan implements sql.Scanner.
func (g *JSONGrid) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok || bytes == nil {
		return nil
	}
	return json.Unmarshal(bytes, g)
}

// Value implements driver.Valuer.
func (g JSONGrid) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// SpinResult is the canonical, persisted record of one spin. Once
// constructed it is never mutated — a dispute is resolved by replaying the
// engine against InitialGrid/ServerSeed/ClientSeed/Nonce, not by editing
// this record.
type SpinResult struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	SessionID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"sessionId"`
	PlayerID           uuid.UUID    `gorm:"type:uuid;not null;index" json:"playerId"`
	Bet                money.Amount `gorm:"type:varchar(32);not null" json:"bet"`
	BalanceBefore      money.Amount `gorm:"type:varchar(32);not null" json:"balanceBefore"`
	BalanceAfter       money.Amount `gorm:"type:varchar(32);not null" json:"balanceAfter"`
	InitialGrid        JSONGrid     `gorm:"type:jsonb;not null" json:"initialGrid"`
	FinalGrid          JSONGrid     `gorm:"type:jsonb;not null" json:"finalGrid"`
	Cascades           CascadeSteps `gorm:"type:jsonb" json:"cascades"`
	BaseWin            money.Amount `gorm:"type:varchar(32);default:'0.00'" json:"baseWin"`
	TotalMultiplier    int          `gorm:"default:1" json:"totalMultiplier"`
	TotalWin           money.Amount `gorm:"type:varchar(32);default:'0.00'" json:"totalWin"`
	WinCapped          bool         `gorm:"default:false" json:"winCapped"`
	IsFreeSpin         bool         `gorm:"default:false;index" json:"isFreeSpin"`
	FreeSpinsSessionID *uuid.UUID   `gorm:"type:uuid;index" json:"freeSpinsSessionId,omitempty"`
	FreeSpinsTriggered bool         `gorm:"default:false" json:"freeSpinsTriggered"`
	FreeSpinsAwarded   int          `gorm:"default:0" json:"freeSpinsAwarded"`
	ScatterCount       int          `gorm:"default:0" json:"scatterCount"`

	ServerSeedHash string `gorm:"type:varchar(64);not null" json:"serverSeedHash"`
	ClientSeed     string `gorm:"type:varchar(64);not null" json:"clientSeed"`
	Nonce          int64  `gorm:"not null" json:"nonce"`
	PrevSpinHash   string `gorm:"type:varchar(64);not null" json:"prevSpinHash"`
	SpinHash       string `gorm:"type:varchar(64);not null;uniqueIndex" json:"spinHash"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"createdAt"`
}

// TableName pins the GORM table name.
func (SpinResult) TableName() string { return "spin_results" }
