package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"studio/internal/config"
	"studio/internal/logger"
	"studio/internal/notify"
	"studio/internal/queue"
	"studio/internal/store"
)

// Worker consumes portal events from redis and maintains the unread counters.
func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false, true)
		boot.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor).
		With().Str("service", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg config.App, log zerolog.Logger) error {
	if cfg.Queue.Backend != "redis" {
		return fmt.Errorf("worker needs QUEUE_BACKEND=redis, got %q; the api dispatches in-process otherwise", cfg.Queue.Backend)
	}

	rdb := store.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	if !rdb.Healthy(ctx) {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet; will keep retrying")
	}

	q := queue.NewRedisQueue(rdb.Client, cfg.Queue.Key, log)
	return notify.NewDispatcher(q, notify.NewRedisInbox(rdb.Client, ""), log).Run(ctx)
}
