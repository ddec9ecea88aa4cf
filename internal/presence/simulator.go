// Package presence fakes online/offline activity so contact lists have something to show.
package presence

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/metrics"
	"studio/internal/store"
)

// DefaultInterval is how often one student and one teacher are flipped.
const DefaultInterval = 5 * time.Second

// Simulator periodically toggles the presence flag of a random student and a random teacher.
// The result is for display only.
type Simulator struct {
	store    *store.Store
	interval time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	rnd    *rand.Rand
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Simulator.
type Option func(*Simulator)

func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRand makes index selection reproducible.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rnd = r }
}

func New(st *store.Store, log zerolog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		store:    st,
		interval: DefaultInterval,
		log:      log.With().Str("component", "presence").Logger(),
		rnd:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the ticker. It is a no-op while already running.
// The loop ends when ctx is done or Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	s.log.Info().Dur("interval", s.interval).Msg("presence simulator started")
}

// Stop cancels the ticker and waits for the loop to exit. Safe to call repeatedly.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info().Msg("presence simulator stopped")
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick flips one random student and one random teacher.
func (s *Simulator) Tick() {
	if n := s.store.StudentCount(); n > 0 {
		if st, err := s.store.ToggleStudentPresence(s.pick(n)); err == nil {
			metrics.PresenceFlips.WithLabelValues("student", state(st.IsOnline)).Inc()
			s.log.Debug().Str("student_id", st.ID).Bool("online", st.IsOnline).Msg("presence flipped")
		}
	}
	if n := s.store.TeacherCount(); n > 0 {
		if t, err := s.store.ToggleTeacherPresence(s.pick(n)); err == nil {
			metrics.PresenceFlips.WithLabelValues("teacher", state(t.IsOnline)).Inc()
			s.log.Debug().Str("teacher_id", t.ID).Bool("online", t.IsOnline).Msg("presence flipped")
		}
	}
}

func (s *Simulator) pick(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

func state(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
