package engine

import "github.com/infinitystorm/server/internal/money"

// MaxWinMultiplier is the regulatory ceiling on a single spin's total win,
// expressed as a multiple of the bet amount.
const MaxWinMultiplier = 25000

// ApplyMaxWinCap clamps winAmount to MaxWinMultiplier times bet.
func ApplyMaxWinCap(winAmount, bet money.Amount) money.Amount {
	max := bet.MulInt(MaxWinMultiplier)
	if winAmount.GreaterThan(max) {
		return max
	}
	return winAmount
}

// IsWinCapped reports whether winAmount exceeds the cap for bet.
func IsWinCapped(winAmount, bet money.Amount) bool {
	return winAmount.GreaterThan(bet.MulInt(MaxWinMultiplier))
}
