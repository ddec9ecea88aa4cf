package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/config"
	"studio/internal/queue"
)

func TestRunRequiresRedisBackend(t *testing.T) {
	var cfg config.App
	cfg.Queue.Backend = "memory"
	err := run(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "QUEUE_BACKEND=redis")
}

func TestRunDispatchesQueuedEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	var cfg config.App
	cfg.Queue.Backend = "redis"
	cfg.Queue.Key = "studio:events"
	cfg.Redis.Addr = mr.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop()) }()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	pub := queue.NewRedisQueue(client, cfg.Queue.Key, zerolog.Nop())
	require.NoError(t, pub.Publish(ctx, queue.Event{
		Kind:       queue.KindMessage,
		RefID:      "msg-1",
		ActorID:    "ST-2024-001",
		Recipients: []string{"T-001", "ST-2024-001"},
		At:         time.Now(),
	}))

	assert.Eventually(t, func() bool {
		v, err := client.HGet(ctx, "studio:inbox:T-001", queue.KindMessage).Result()
		return err == nil && v == "1"
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, mr.Exists("studio:inbox:ST-2024-001"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
}
