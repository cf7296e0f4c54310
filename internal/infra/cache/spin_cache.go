package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/pkg/logger"
)

// spinComputationTTL bounds how long a spin's cascade steps stay available
// for cascade sync: long enough to cover a stalled client reconnecting, not
// so long the keyspace accumulates completed spins forever.
const spinComputationTTL = 30 * time.Minute

const spinComputationKeyPrefix = "spin_computation:"

// SpinCache is a Redis-backed store of engine.SpinComputation keyed by
// spin ID. It is the CascadeSynchronizer's SpinProvider: the synchronizer
// lives in process memory (§5), but the computed cascade steps it replays
// to a client must survive a request handler returning and be reachable
// from whichever instance holds the player's WebSocket.
type SpinCache struct {
	redis *RedisClient
	log   *logger.Logger
}

// NewSpinCache constructs a SpinCache.
func NewSpinCache(redis *RedisClient, log *logger.Logger) *SpinCache {
	return &SpinCache{redis: redis, log: log}
}

func spinComputationKey(spinID uuid.UUID) string {
	return spinComputationKeyPrefix + spinID.String()
}

// Store saves a spin's computed cascade steps for later synchronization.
func (c *SpinCache) Store(ctx context.Context, spinID uuid.UUID, computation *engine.SpinComputation) error {
	if c.redis == nil {
		return nil
	}
	data, err := json.Marshal(computation)
	if err != nil {
		return fmt.Errorf("spin cache: marshal computation: %w", err)
	}
	if err := c.redis.Set(ctx, spinComputationKey(spinID), data, spinComputationTTL); err != nil {
		return fmt.Errorf("spin cache: store computation: %w", err)
	}
	return nil
}

// Computation implements cascadesync.SpinProvider.
func (c *SpinCache) Computation(spinID uuid.UUID) (*engine.SpinComputation, bool) {
	if c.redis == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := c.redis.Get(ctx, spinComputationKey(spinID))
	if err != nil || val == "" {
		return nil, false
	}
	var computation engine.SpinComputation
	if err := json.Unmarshal([]byte(val), &computation); err != nil {
		c.log.Error().Err(err).Str("spin_id", spinID.String()).Msg("spin cache: corrupt cached computation")
		return nil, false
	}
	return &computation, true
}
