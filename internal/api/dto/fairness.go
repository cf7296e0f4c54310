package dto

import "github.com/infinitystorm/server/internal/validator"

// VerifySpinHashRequest lets a player independently re-derive one spin's
// hash-chain link once the server seed behind it has been revealed.
type VerifySpinHashRequest struct {
	ServerSeed   string `json:"serverSeed" validate:"required"`
	ClientSeed   string `json:"clientSeed" validate:"required"`
	PrevSpinHash string `json:"prevSpinHash" validate:"required"`
	SpinHash     string `json:"spinHash" validate:"required"`
	Nonce        int64  `json:"nonce"`
}

// VerifySpinHashResponse reports whether the re-derived hash matched.
type VerifySpinHashResponse struct {
	Valid      bool                 `json:"valid"`
	Mismatches []validator.Mismatch `json:"mismatches,omitempty"`
}

// ChainLink is one spin's worth of hash-chain verification input.
type ChainLink struct {
	ClientSeed   string `json:"clientSeed" validate:"required"`
	Nonce        int64  `json:"nonce"`
	PrevSpinHash string `json:"prevSpinHash" validate:"required"`
	SpinHash     string `json:"spinHash" validate:"required"`
}

// VerifyChainRequest replays an entire revealed session's hash chain from
// its committed server seed hash.
type VerifyChainRequest struct {
	ServerSeed     string      `json:"serverSeed" validate:"required"`
	ServerSeedHash string      `json:"serverSeedHash" validate:"required"`
	Spins          []ChainLink `json:"spins"`
}

// VerifyChainResponse reports whether the full chain replays cleanly.
type VerifyChainResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
