package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"studio/internal/advice"
	"studio/internal/auth"
	"studio/internal/cloudinary"
	"studio/internal/config"
	"studio/internal/handler"
	"studio/internal/logger"
	"studio/internal/notify"
	"studio/internal/portal"
	"studio/internal/presence"
	"studio/internal/queue"
	"studio/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", false, true)
		boot.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// run serves until ctx is done, then shuts the server down gracefully.
func run(ctx context.Context, cfg config.App, log zerolog.Logger) error {
	st := store.NewSeeded()

	var (
		q     queue.Queue
		inbox notify.Inbox
		rdb   *store.Redis
	)
	if cfg.Queue.Backend == "redis" {
		rdb = store.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		if !rdb.Healthy(ctx) {
			log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis not reachable; notifications will lag until it is")
		}
		q = queue.NewRedisQueue(rdb.Client, cfg.Queue.Key, log)
		inbox = notify.NewRedisInbox(rdb.Client, "")
	} else {
		q = queue.NewInMemory(cfg.Queue.Size)
		inbox = notify.NewMemoryInbox()
		// no separate worker consumes the in-memory queue
		go func() {
			if err := notify.NewDispatcher(q, inbox, log).Run(ctx); err != nil {
				log.Error().Err(err).Msg("dispatcher failed")
			}
		}()
	}

	svc := portal.NewService(st, log,
		portal.WithLatency(portal.Latency{
			Login:          cfg.Latency.Login,
			ChangePassword: cfg.Latency.ChangePassword,
			AddLog:         cfg.Latency.AddLog,
			AddArtwork:     cfg.Latency.AddArtwork,
		}),
		portal.WithSharedPassword(cfg.Auth.SharedPassword),
		portal.WithPublisher(q),
		portal.WithInbox(inbox),
	)

	if cfg.Presence.Enabled {
		sim := presence.New(st, log, presence.WithInterval(cfg.Presence.Interval))
		sim.Start(ctx)
		defer sim.Stop()
	}

	var gen advice.Generator
	gemini, err := advice.NewGemini(ctx, cfg.Advice.APIKey, cfg.Advice.Model)
	switch {
	case errors.Is(err, advice.ErrDisabled):
		log.Info().Msg("advice generation not configured (ADVICE_API_KEY not set)")
	case err != nil:
		log.Warn().Err(err).Msg("advice client init failed")
	default:
		defer gemini.Close()
		gen = gemini
	}

	deps := handler.Deps{
		Portal: svc,
		Advice: advice.New(gen, cfg.Advice.Timeout, log),
		Issuer: auth.NewIssuer(cfg.Auth.JWTIssuer, cfg.Auth.JWTSigningKey, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		Log:    log,
	}
	if rdb != nil {
		deps.Redis = rdb
	}
	if cfg.Cloudinary.Enabled() {
		deps.Uploader = cloudinary.New(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		log.Info().Str("cloud", cfg.Cloudinary.CloudName).Msg("cloudinary configured")
	} else {
		log.Info().Msg("cloudinary not configured; uploads disabled")
	}

	r := handler.NewRouter(handler.New(deps), handler.RouterConfig{
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
		RateLimitBurst:     cfg.RateLimit.Burst,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("queue", cfg.Queue.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}
