package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "profile:"

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// MemoryProfiles keeps profiles in the process-local TTL cache.
type MemoryProfiles struct {
	c *Cache
}

func NewMemoryProfiles(ttl time.Duration) *MemoryProfiles {
	return &MemoryProfiles{c: New(ttl)}
}

func (m *MemoryProfiles) GetProfile(_ context.Context, userID string) (user.Profile, bool, error) {
	v, ok := m.c.Get(profileKey(userID))
	if !ok {
		return user.Profile{}, false, nil
	}
	p, ok := v.(user.Profile)
	return p, ok, nil
}

func (m *MemoryProfiles) SetProfile(_ context.Context, p user.Profile) error {
	m.c.Set(profileKey(p.ID), p)
	return nil
}

func (m *MemoryProfiles) DeleteProfile(_ context.Context, userID string) error {
	m.c.Delete(profileKey(userID))
	return nil
}

// RedisProfiles shares cached profiles across API replicas.
type RedisProfiles struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProfiles(rdb *redis.Client, ttl time.Duration) *RedisProfiles {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisProfiles{rdb: rdb, ttl: ttl}
}

func (r *RedisProfiles) GetProfile(ctx context.Context, userID string) (user.Profile, bool, error) {
	raw, err := r.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user.Profile{}, false, nil
		}
		return user.Profile{}, false, fmt.Errorf("redis get: %w", err)
	}

	var p user.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		// a corrupt entry is just a miss; the next read overwrites it
		return user.Profile{}, false, nil
	}
	return p, true, nil
}

func (r *RedisProfiles) SetProfile(ctx context.Context, p user.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, profileKey(p.ID), raw, r.ttl).Err()
}

func (r *RedisProfiles) DeleteProfile(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, profileKey(userID)).Err()
}
