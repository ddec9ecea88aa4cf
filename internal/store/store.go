package store

import (
	"errors"
	"sync"
	"time"

	"studio/internal/model"
)

var (
	// ErrNotFound is returned for lookups and updates on unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when adding a record whose id is already taken.
	ErrDuplicateID = errors.New("duplicate id")
)

// Store holds the studio's collections in process memory. Every method holds the
// lock for its whole duration, so operations are atomic with respect to each other.
// Returned records and slices are copies; mutating them never touches the store.
type Store struct {
	mu sync.RWMutex

	seed Dataset

	students      []model.Student
	teachers      []model.Teacher
	logs          []model.DailyLog
	announcements []model.Announcement
	artworks      []model.Artwork
	messages      []model.DirectMessage

	now   func() time.Time
	newID func(prefix string) string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for timestamps and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides id generation.
func WithIDFunc(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

// New builds a store holding a private copy of ds. Reset returns to that state.
func New(ds Dataset, opts ...Option) *Store {
	s := &Store{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = ds.Clone()
	s.load()
	return s
}

// NewSeeded builds a store populated with the studio's initial dataset.
func NewSeeded(opts ...Option) *Store {
	s := &Store{now: time.Now, newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	s.seed = Seed(s.now())
	s.load()
	return s
}

// Reset discards every write since construction.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
}

func (s *Store) load() {
	ds := s.seed.Clone()
	s.students = ds.Students
	s.teachers = ds.Teachers
	s.logs = ds.Logs
	s.announcements = ds.Announcements
	s.artworks = ds.Artworks
	s.messages = ds.Messages
}

// Snapshot returns a copy of the current collections.
func (s *Store) Snapshot() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Dataset{
		Students:      s.students,
		Teachers:      s.teachers,
		Logs:          s.logs,
		Announcements: s.announcements,
		Artworks:      s.artworks,
		Messages:      s.messages,
	}.Clone()
}

func (s *Store) today() string {
	return s.now().Format(model.DateLayout)
}
