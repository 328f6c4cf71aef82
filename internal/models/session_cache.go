package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ SessionCache = (*RedisSessionCache)(nil)

// RedisSessionCache keeps recently validated sessions so authenticated
// requests skip the sessions table. Entries never outlive the session.
type RedisSessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionCache(rdb *redis.Client, ttl time.Duration) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

func (c *RedisSessionCache) Get(ctx context.Context, sid string) (*Session, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// A bad entry is treated as a miss and dropped.
		_ = c.rdb.Del(ctx, sessionKey(sid)).Err()
		return nil, nil
	}
	return &s, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, session *Session) error {
	ttl := c.ttl
	if left := time.Until(session.Expire); left < ttl {
		ttl = left
	}
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := c.rdb.Set(ctx, sessionKey(session.SID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, sid string) error {
	if err := c.rdb.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
