// Package portal is the access layer over the studio store: role-aware reads,
// writes with simulated latency, and event publication for notifications.
package portal

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/notify"
	"studio/internal/queue"
	"studio/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyPassword      = errors.New("password must not be empty")
	ErrNoStudents         = errors.New("log must name at least one student")
	ErrEmptyMessage       = errors.New("message must not be empty")
	ErrProfileReadOnly    = errors.New("profile is read-only for this role")
	ErrUnknownRole        = errors.New("unknown role")
)

// Latency is the artificial delay applied before each pseudo-async call completes.
type Latency struct {
	Login          time.Duration
	ChangePassword time.Duration
	AddLog         time.Duration
	AddArtwork     time.Duration
}

// DefaultLatency mirrors the delays the front-end was designed against.
var DefaultLatency = Latency{
	Login:          800 * time.Millisecond,
	ChangePassword: 800 * time.Millisecond,
	AddLog:         500 * time.Millisecond,
	AddArtwork:     500 * time.Millisecond,
}

const (
	defaultPassword = "1234"
	publishTimeout  = 2 * time.Second
)

// Service wraps a store with the portal's access rules.
type Service struct {
	store    *store.Store
	events   queue.Publisher
	inbox    notify.Inbox
	latency  Latency
	password string
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLatency sets the artificial delays of the pseudo-async operations.
func WithLatency(l Latency) Option {
	return func(s *Service) { s.latency = l }
}

// WithSharedPassword sets the single password accepted for every account.
func WithSharedPassword(pw string) Option {
	return func(s *Service) { s.password = pw }
}

// WithPublisher enables event publication for notifications.
func WithPublisher(p queue.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithInbox exposes unread counters through the service.
func WithInbox(in notify.Inbox) Option {
	return func(s *Service) { s.inbox = in }
}

// WithClock overrides the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service backed by st.
func NewService(st *store.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		latency:  DefaultLatency,
		password: defaultPassword,
		now:      time.Now,
		log:      log.With().Str("component", "portal").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sleep waits d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish never fails the write that triggered it.
func (s *Service) publish(ctx context.Context, kind, refID, actorID string, recipients []string) {
	if s.events == nil || len(recipients) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := queue.Event{
		Kind:       kind,
		RefID:      refID,
		ActorID:    actorID,
		Recipients: recipients,
		At:         s.now().UTC(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Str("ref_id", refID).Msg("event publish failed")
	}
}
