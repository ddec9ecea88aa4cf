package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/model"
)

var (
	ErrClosed       = errors.New("chat session closed")
	ErrNoPeer       = errors.New("no conversation selected")
	ErrEmptyMessage = errors.New("message must not be empty")
)

// Backend is the server the session polls. Calls act on behalf of the signed-in user.
type Backend interface {
	Messages(ctx context.Context, peerID string) ([]model.DirectMessage, error)
	Send(ctx context.Context, peerID, content string) (model.DirectMessage, error)
	Contacts(ctx context.Context) ([]model.Contact, error)
}

// State of the conversation view.
type State int

const (
	Idle State = iota
	Loading
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Config struct {
	MessagePoll time.Duration
	ContactPoll time.Duration
	MatchWindow time.Duration
	Now         func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MessagePoll <= 0 {
		c.MessagePoll = time.Second
	}
	if c.ContactPoll <= 0 {
		c.ContactPoll = 3 * time.Second
	}
	if c.MatchWindow <= 0 {
		c.MatchWindow = 10 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Update reports messages from the server that the view had not shown before.
type Update struct {
	Peer     string
	Messages []model.DirectMessage
}

// View is a point-in-time copy of the session.
type View struct {
	State    State
	Peer     string
	Entries  []Entry
	Contacts []model.Contact
}

// Session owns the polling loops of one signed-in user: contacts for the session
// lifetime and messages for the selected peer.
type Session struct {
	backend Backend
	self    string
	cfg     Config
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	updates chan Update

	mu         sync.Mutex
	state      State
	gen        uint64
	conv       *Conversation
	contacts   []model.Contact
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// NewSession starts the contact poll and returns an Idle session.
func NewSession(ctx context.Context, backend Backend, self string, cfg Config, log zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		backend: backend,
		self:    self,
		cfg:     cfg.withDefaults(),
		log:     log.With().Str("component", "chat").Str("user_id", self).Logger(),
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan Update, 64),
	}
	s.wg.Add(1)
	go s.pollContacts()
	return s
}

// Updates delivers new server messages. It is closed by Close.
func (s *Session) Updates() <-chan Update { return s.updates }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select opens the conversation with peer. Any previous message poll is cancelled
// and the view restarts in Loading.
func (s *Session) Select(peer string) error {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return ErrClosed
	}
	oldCancel, oldDone := s.detachPoll()
	s.gen++
	gen := s.gen
	s.conv = NewConversation(s.self, peer, s.cfg.MatchWindow)
	s.state = Loading

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	s.pollCancel, s.pollDone = cancel, done
	s.wg.Add(1)
	s.mu.Unlock()

	stopPoll(oldCancel, oldDone)
	go s.pollMessages(ctx, gen, peer, done)
	s.log.Debug().Str("peer_id", peer).Msg("conversation selected")
	return nil
}

// Deselect stops the message poll and returns to Idle.
func (s *Session) Deselect() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	cancel, done := s.detachPoll()
	s.gen++
	s.conv = nil
	s.state = Idle
	s.mu.Unlock()

	stopPoll(cancel, done)
}

// Send shows content immediately as a pending entry, then posts it. On success the entry
// is swapped for the server record; on failure it is removed.
func (s *Session) Send(ctx context.Context, content string) (model.DirectMessage, error) {
	if strings.TrimSpace(content) == "" {
		return model.DirectMessage{}, ErrEmptyMessage
	}
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return model.DirectMessage{}, ErrClosed
	}
	if s.conv == nil {
		s.mu.Unlock()
		return model.DirectMessage{}, ErrNoPeer
	}
	conv, gen := s.conv, s.gen
	temp := conv.AddOptimistic(content, s.cfg.Now().UTC())
	s.mu.Unlock()

	rec, err := s.backend.Send(ctx, conv.Peer(), content)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.gen == gen
	if err != nil {
		if current {
			conv.Discard(temp.ID)
		}
		return model.DirectMessage{}, fmt.Errorf("send message: %w", err)
	}
	if current {
		conv.Confirm(temp.ID, rec)
	}
	return rec, nil
}

// Snapshot returns a copy of the current view.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{State: s.state, Contacts: append([]model.Contact(nil), s.contacts...)}
	if s.conv != nil {
		v.Peer = s.conv.Peer()
		v.Entries = s.conv.Entries()
	}
	return v
}

// Close stops every loop, waits for them and closes Updates. Safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	s.gen++
	pollCancel, _ := s.detachPoll()
	s.mu.Unlock()

	s.cancel()
	if pollCancel != nil {
		pollCancel()
	}
	s.wg.Wait()
	close(s.updates)
	s.log.Debug().Msg("chat session closed")
}

// detachPoll must be called with mu held.
func (s *Session) detachPoll() (context.CancelFunc, chan struct{}) {
	cancel, done := s.pollCancel, s.pollDone
	s.pollCancel, s.pollDone = nil, nil
	return cancel, done
}

func stopPoll(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Session) pollMessages(ctx context.Context, gen uint64, peer string, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	s.refreshMessages(ctx, gen, peer)
	ticker := time.NewTicker(s.cfg.MessagePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshMessages(ctx, gen, peer)
		}
	}
}

func (s *Session) refreshMessages(ctx context.Context, gen uint64, peer string) {
	msgs, err := s.backend.Messages(ctx, peer)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Str("peer_id", peer).Msg("message poll failed")
		}
		return
	}

	s.mu.Lock()
	if s.gen != gen || s.conv == nil {
		s.mu.Unlock()
		return
	}
	added := s.conv.Merge(msgs)
	if s.state == Loading {
		s.state = Active
	}
	s.mu.Unlock()

	if len(added) > 0 {
		s.emit(Update{Peer: peer, Messages: added})
	}
}

func (s *Session) pollContacts() {
	defer s.wg.Done()

	s.refreshContacts()
	ticker := time.NewTicker(s.cfg.ContactPoll)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refreshContacts()
		}
	}
}

func (s *Session) refreshContacts() {
	contacts, err := s.backend.Contacts(s.ctx)
	if err != nil {
		if s.ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("contact poll failed")
		}
		return
	}
	s.mu.Lock()
	if s.state != Stopped {
		s.contacts = contacts
	}
	s.mu.Unlock()
}

func (s *Session) emit(u Update) {
	select {
	case s.updates <- u:
	default:
		s.log.Warn().Str("peer_id", u.Peer).Int("messages", len(u.Messages)).Msg("update dropped, consumer too slow")
	}
}
