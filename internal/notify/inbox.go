package notify

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Inbox keeps per-user unread counters keyed by event kind.
type Inbox interface {
	Incr(ctx context.Context, userID, kind string) error
	Counts(ctx context.Context, userID string) (map[string]int64, error)
	Clear(ctx context.Context, userID, kind string) error
}

// MemoryInbox is an Inbox for single-process deployments.
type MemoryInbox struct {
	mu     sync.Mutex
	counts map[string]map[string]int64
}

func NewMemoryInbox() *MemoryInbox {
	return &MemoryInbox{counts: make(map[string]map[string]int64)}
}

func (b *MemoryInbox) Incr(_ context.Context, userID, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.counts[userID]
	if !ok {
		m = make(map[string]int64)
		b.counts[userID] = m
	}
	m[kind]++
	return nil
}

func (b *MemoryInbox) Counts(_ context.Context, userID string) (map[string]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]int64, len(b.counts[userID]))
	for k, v := range b.counts[userID] {
		out[k] = v
	}
	return out, nil
}

func (b *MemoryInbox) Clear(_ context.Context, userID, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.counts[userID], kind)
	return nil
}

// RedisInbox stores counters in one hash per user.
type RedisInbox struct {
	client *redis.Client
	prefix string
}

func NewRedisInbox(client *redis.Client, prefix string) *RedisInbox {
	if prefix == "" {
		prefix = "studio:inbox:"
	}
	return &RedisInbox{client: client, prefix: prefix}
}

func (b *RedisInbox) Incr(ctx context.Context, userID, kind string) error {
	return b.client.HIncrBy(ctx, b.prefix+userID, kind, 1).Err()
}

func (b *RedisInbox) Counts(ctx context.Context, userID string) (map[string]int64, error) {
	raw, err := b.client.HGetAll(ctx, b.prefix+userID).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out, nil
}

func (b *RedisInbox) Clear(ctx context.Context, userID, kind string) error {
	return b.client.HDel(ctx, b.prefix+userID, kind).Err()
}
