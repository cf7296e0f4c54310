package dto

import (
	"time"

	"github.com/infinitystorm/server/internal/wallet"
)

// BalanceResponse is the GET /wallet/balance payload.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// TransactionResponse is one ledger entry on the wire.
type TransactionResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Amount       string  `json:"amount"`
	BalanceAfter string  `json:"balanceAfter"`
	SpinResultID *string `json:"spinResultId,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TransactionFromModel converts a persisted wallet.Transaction to its wire shape.
func TransactionFromModel(t wallet.Transaction) TransactionResponse {
	var spinResultID *string
	if t.SpinResultID != nil {
		s := t.SpinResultID.String()
		spinResultID = &s
	}
	return TransactionResponse{
		ID:           t.ID.String(),
		Kind:         string(t.Kind),
		Amount:       t.Amount.String(),
		BalanceAfter: t.BalanceAfter.String(),
		SpinResultID: spinResultID,
		Reason:       t.Reason,
		CreatedAt:    t.CreatedAt,
	}
}

// TransactionsResponse is the GET /wallet/transactions page.
type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

// StatsResponse is the GET /wallet/stats payload: lifetime wager/win
// totals tracked on the player's game session, used by operators and players alike to
// sanity-check the session's net result.
type StatsResponse struct {
	Balance      string `json:"balance"`
	TotalWagered string `json:"totalWagered"`
	TotalWon     string `json:"totalWon"`
}

// AdjustRequest is the POST /wallet/admin/adjust payload: a manual balance
// correction, e.g. a support credit/debit.
type AdjustRequest struct {
	PlayerID string  `json:"playerId" validate:"required,uuid"`
	Amount   float64 `json:"amount" validate:"required"`
	Reason   string  `json:"reason" validate:"required"`
}
