package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kicklab/challenge-api/internal/domain"
)

const leaderboardKeyPrefix = "leaderboard:"

// Leaderboard caches a challenge's computed top-N as JSON with a short TTL.
// It is purely an acceleration layer: readers fall back to recomputing from
// the repository on a miss.
type Leaderboard struct {
	kv  KV
	ttl time.Duration
}

// NewLeaderboard constructs a Leaderboard cache.
func NewLeaderboard(kv KV, ttl time.Duration) *Leaderboard {
	return &Leaderboard{kv: kv, ttl: ttl}
}

// Get returns the cached top-N for a challenge, if present.
func (c *Leaderboard) Get(ctx context.Context, challengeID string) ([]domain.Submission, bool, error) {
	raw, ok, err := c.kv.Get(ctx, leaderboardKeyPrefix+challengeID)
	if err != nil || !ok {
		return nil, false, err
	}
	var top []domain.Submission
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the
		// next Put.
		return nil, false, nil
	}
	return top, true, nil
}

// Put stores the computed top-N for a challenge.
func (c *Leaderboard) Put(ctx context.Context, challengeID string, top []domain.Submission) error {
	payload, err := json.Marshal(top)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, leaderboardKeyPrefix+challengeID, string(payload), c.ttl)
}

// Invalidate drops a challenge's cached leaderboard.
func (c *Leaderboard) Invalidate(ctx context.Context, challengeID string) error {
	return c.kv.Delete(ctx, leaderboardKeyPrefix+challengeID)
}
