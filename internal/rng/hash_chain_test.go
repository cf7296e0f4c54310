package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashServerSeed_IsDeterministic(t *testing.T) {
	h := NewHashChain()
	a := h.HashServerSeed("seed-a")
	b := h.HashServerSeed("seed-a")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, h.HashServerSeed("seed-b"))
}

func TestGenerateSpinHash_ChangesWithAnyInput(t *testing.T) {
	h := NewHashChain()
	base := h.GenerateSpinHash("prev", "server", "client", 0)

	assert.NotEqual(t, base, h.GenerateSpinHash("other-prev", "server", "client", 0))
	assert.NotEqual(t, base, h.GenerateSpinHash("prev", "other-server", "client", 0))
	assert.NotEqual(t, base, h.GenerateSpinHash("prev", "server", "other-client", 0))
	assert.NotEqual(t, base, h.GenerateSpinHash("prev", "server", "client", 1))
}

func TestVerifyChain_AcceptsAnIntactChain(t *testing.T) {
	h := NewHashChain()
	serverSeed, err := h.GenerateServerSeed()
	require.NoError(t, err)
	serverSeedHash := h.HashServerSeed(serverSeed)

	clientSeed := "client-seed"
	prev := h.GenerateInitialPrevSpinHash(serverSeedHash)

	var spins []SpinVerification
	for nonce := int64(0); nonce < 3; nonce++ {
		spinHash := h.GenerateSpinHash(prev, serverSeed, clientSeed, nonce)
		spins = append(spins, SpinVerification{
			ClientSeed:   clientSeed,
			Nonce:        nonce,
			PrevSpinHash: prev,
			SpinHash:     spinHash,
		})
		prev = spinHash
	}

	ok, err := h.VerifyChain(serverSeed, serverSeedHash, spins)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyChain_RejectsTamperedServerSeed(t *testing.T) {
	h := NewHashChain()
	serverSeedHash := h.HashServerSeed("real-seed")

	_, err := h.VerifyChain("wrong-seed", serverSeedHash, nil)
	assert.Error(t, err)
}

func TestVerifyChain_RejectsBrokenLink(t *testing.T) {
	h := NewHashChain()
	serverSeed := "server-seed"
	serverSeedHash := h.HashServerSeed(serverSeed)
	clientSeed := "client-seed"
	prev := h.GenerateInitialPrevSpinHash(serverSeedHash)

	spins := []SpinVerification{
		{ClientSeed: clientSeed, Nonce: 0, PrevSpinHash: prev, SpinHash: "not-the-real-hash"},
	}

	ok, err := h.VerifyChain(serverSeed, serverSeedHash, spins)
	assert.Error(t, err)
	assert.False(t, ok)
}
