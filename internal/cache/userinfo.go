package cache

import (
	"context"
	"time"

	"github.com/kicklab/challenge-api/internal/domain"
)

const userKeyPrefix = "user:name:"

// UserLookup loads a user from the source of truth on a cache miss.
type UserLookup func(ctx context.Context, id string) (domain.User, error)

// UserInfo is a read-through cache of user display names.
type UserInfo struct {
	kv     KV
	lookup UserLookup
	ttl    time.Duration
}

// NewUserInfo constructs a UserInfo cache. ttl of zero means entries never
// expire within the process lifetime of the backing store.
func NewUserInfo(kv KV, lookup UserLookup, ttl time.Duration) *UserInfo {
	return &UserInfo{kv: kv, lookup: lookup, ttl: ttl}
}

// DisplayName returns the display name for a user id, consulting the cache
// first. A failed lookup is not cached.
func (c *UserInfo) DisplayName(ctx context.Context, id string) (string, error) {
	key := userKeyPrefix + id
	if name, ok, err := c.kv.Get(ctx, key); err == nil && ok {
		return name, nil
	}

	user, err := c.lookup(ctx, id)
	if err != nil {
		return "", err
	}
	_ = c.kv.Set(ctx, key, user.DisplayName, c.ttl)
	return user.DisplayName, nil
}

// Invalidate drops a cached name, e.g. after a profile update.
func (c *UserInfo) Invalidate(ctx context.Context, id string) error {
	return c.kv.Delete(ctx, userKeyPrefix+id)
}
