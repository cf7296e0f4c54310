package validator

import "github.com/infinitystorm/server/internal/rng"

// ValidateSpinHash re-derives a single spin's hash link and reports whether
// it matches what was recorded, without needing the full session chain.
func ValidateSpinHash(serverSeed, clientSeed, prevSpinHash, spinHash string, nonce int64) Result {
	chain := rng.NewHashChain()
	expected := chain.GenerateSpinHash(prevSpinHash, serverSeed, clientSeed, nonce)
	res := Result{Valid: true}
	if expected != spinHash {
		res.fail("spin_hash", expected, spinHash)
	}
	return res
}
