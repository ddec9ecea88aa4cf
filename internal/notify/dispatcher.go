// Package notify turns queued portal events into per-user unread counters.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"studio/internal/metrics"
	"studio/internal/queue"
)

// Dispatcher consumes events and bumps the inbox of every recipient.
type Dispatcher struct {
	source queue.Queue
	inbox  Inbox
	log    zerolog.Logger
}

func NewDispatcher(source queue.Queue, inbox Inbox, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		source: source,
		inbox:  inbox,
		log:    log.With().Str("component", "dispatcher").Logger(),
	}
}

// Run blocks until ctx is done or the source closes.
func (d *Dispatcher) Run(ctx context.Context) error {
	events, err := d.source.Consume(ctx)
	if err != nil {
		return err
	}
	d.log.Info().Msg("dispatcher started")
	for evt := range events {
		d.handle(ctx, evt)
	}
	d.log.Info().Msg("dispatcher stopped")
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, evt queue.Event) {
	for _, userID := range evt.Recipients {
		if userID == "" || userID == evt.ActorID {
			continue
		}
		if err := d.inbox.Incr(ctx, userID, evt.Kind); err != nil {
			d.log.Error().Err(err).Str("user_id", userID).Str("kind", evt.Kind).Msg("inbox update failed")
			continue
		}
		metrics.NotificationsDispatched.WithLabelValues(evt.Kind).Inc()
	}
	d.log.Debug().Str("kind", evt.Kind).Str("ref_id", evt.RefID).Int("recipients", len(evt.Recipients)).Msg("event dispatched")
}
