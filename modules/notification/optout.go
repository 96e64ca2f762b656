package notification

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// optOutKey is the Redis set holding opted-out phone numbers. A set keeps
// membership checks O(1) on the dispatch hot path.
const optOutKey = "notifications:sms:optout"

// RedisOptOutList is the production opt-out list, backed by a Redis set so
// all backoffice instances see suppressions immediately.
type RedisOptOutList struct {
	client redis.UniversalClient
}

// NewRedisOptOutList wraps a connected Redis client.
func NewRedisOptOutList(client redis.UniversalClient) *RedisOptOutList {
	return &RedisOptOutList{client: client}
}

// HasOptedOut reports whether the phone number is suppressed.
func (l *RedisOptOutList) HasOptedOut(ctx context.Context, phone string) (bool, error) {
	return l.client.SIsMember(ctx, optOutKey, phone).Result()
}

// OptOut suppresses SMS delivery to the phone number.
func (l *RedisOptOutList) OptOut(ctx context.Context, phone string) error {
	return l.client.SAdd(ctx, optOutKey, phone).Err()
}

// OptIn removes a suppression, re-enabling SMS delivery.
func (l *RedisOptOutList) OptIn(ctx context.Context, phone string) error {
	return l.client.SRem(ctx, optOutKey, phone).Err()
}

// MemoryOptOutList is an in-memory OptOutList for tests and local
// development. Safe for concurrent use.
type MemoryOptOutList struct {
	mu     sync.RWMutex
	phones map[string]struct{}
}

// NewMemoryOptOutList creates an empty in-memory opt-out list.
func NewMemoryOptOutList(phones ...string) *MemoryOptOutList {
	l := &MemoryOptOutList{phones: make(map[string]struct{}, len(phones))}
	for _, p := range phones {
		l.phones[p] = struct{}{}
	}
	return l
}

func (l *MemoryOptOutList) HasOptedOut(ctx context.Context, phone string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.phones[phone]
	return ok, nil
}

func (l *MemoryOptOutList) OptOut(ctx context.Context, phone string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.phones[phone] = struct{}{}
	return nil
}

func (l *MemoryOptOutList) OptIn(ctx context.Context, phone string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.phones, phone)
	return nil
}
