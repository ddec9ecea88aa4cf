// Package chat is the polling client side of direct messaging: it keeps a local view of
// one conversation, shows sends optimistically and reconciles them with fetched records by id.
package chat

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"studio/internal/model"
)

// TempPrefix marks ids assigned locally to messages not yet confirmed by the server.
const TempPrefix = "temp-"

// IsTemp reports whether id was assigned locally.
func IsTemp(id string) bool { return strings.HasPrefix(id, TempPrefix) }

// Entry is one line of the local conversation view.
type Entry struct {
	model.DirectMessage
	Pending bool `json:"pending"`
}

// Conversation is the local view of the messages between self and peer.
// It is not safe for concurrent use.
type Conversation struct {
	self, peer string
	window     time.Duration

	entries []Entry
	// known holds server ids already shown, so they are neither reported again
	// nor matched against new optimistic entries.
	known map[string]struct{}
	// confirmed holds ids swapped in by Confirm that no fetch has returned yet.
	confirmed map[string]struct{}
}

// NewConversation starts an empty view of the messages between self and peer.
func NewConversation(self, peer string, window time.Duration) *Conversation {
	return &Conversation{
		self:      self,
		peer:      peer,
		window:    window,
		known:     make(map[string]struct{}),
		confirmed: make(map[string]struct{}),
	}
}

// Peer returns the other party of the conversation.
func (c *Conversation) Peer() string { return c.peer }

// Entries returns a copy of the view, oldest first.
func (c *Conversation) Entries() []Entry {
	return slices.Clone(c.entries)
}

// AddOptimistic appends a pending message from self to peer and returns it.
func (c *Conversation) AddOptimistic(content string, at time.Time) model.DirectMessage {
	msg := model.DirectMessage{
		ID:         TempPrefix + uuid.NewString(),
		SenderID:   c.self,
		ReceiverID: c.peer,
		Content:    content,
		Timestamp:  at,
	}
	c.entries = append(c.entries, Entry{DirectMessage: msg, Pending: true})
	return msg
}

// Confirm replaces the pending entry tempID with the server record in place.
// If a fetch already delivered rec, the pending entry is dropped instead.
// It reports whether tempID was still pending.
func (c *Conversation) Confirm(tempID string, rec model.DirectMessage) bool {
	i := c.pendingIndex(tempID)
	if i < 0 {
		return false
	}
	if _, seen := c.known[rec.ID]; seen {
		c.entries = slices.Delete(c.entries, i, i+1)
		return true
	}
	c.entries[i] = Entry{DirectMessage: rec}
	c.known[rec.ID] = struct{}{}
	c.confirmed[rec.ID] = struct{}{}
	return true
}

// Discard removes a pending entry whose send failed.
func (c *Conversation) Discard(tempID string) bool {
	i := c.pendingIndex(tempID)
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return true
}

// Merge reconciles the view with a fetched conversation. Fetched records replace every
// confirmed entry. A pending entry is dropped once an unseen fetched record with the same
// sender, receiver and content lies within the match window of it; each fetched record
// absorbs at most one pending entry. Records confirmed locally but missing from a stale
// fetch are kept. Merge returns the fetched records that are new to the view and were not
// the server copy of a local send.
func (c *Conversation) Merge(fetched []model.DirectMessage) []model.DirectMessage {
	inFetch := make(map[string]struct{}, len(fetched))
	for _, m := range fetched {
		inFetch[m.ID] = struct{}{}
	}

	claimed := make(map[string]struct{})
	var keep []Entry
	for _, e := range c.entries {
		switch {
		case e.Pending:
			if id, ok := c.match(e.DirectMessage, fetched, claimed); ok {
				claimed[id] = struct{}{}
				continue
			}
			keep = append(keep, e)
		default:
			if _, ok := c.confirmed[e.ID]; ok {
				if _, fetchedNow := inFetch[e.ID]; !fetchedNow {
					keep = append(keep, e)
				}
			}
		}
	}

	var added []model.DirectMessage
	next := make([]Entry, 0, len(fetched)+len(keep))
	for _, m := range fetched {
		if _, ok := c.known[m.ID]; !ok {
			if _, mine := claimed[m.ID]; !mine {
				added = append(added, m)
			}
			c.known[m.ID] = struct{}{}
		}
		delete(c.confirmed, m.ID)
		next = append(next, Entry{DirectMessage: m})
	}
	next = append(next, keep...)
	slices.SortStableFunc(next, func(a, b Entry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	c.entries = next
	return added
}

func (c *Conversation) match(p model.DirectMessage, fetched []model.DirectMessage, claimed map[string]struct{}) (string, bool) {
	for _, m := range fetched {
		if _, ok := c.known[m.ID]; ok {
			continue
		}
		if _, ok := claimed[m.ID]; ok {
			continue
		}
		if m.SenderID != p.SenderID || m.ReceiverID != p.ReceiverID || m.Content != p.Content {
			continue
		}
		if d := m.Timestamp.Sub(p.Timestamp); d > c.window || d < -c.window {
			continue
		}
		return m.ID, true
	}
	return "", false
}

func (c *Conversation) pendingIndex(tempID string) int {
	return slices.IndexFunc(c.entries, func(e Entry) bool {
		return e.Pending && e.ID == tempID
	})
}
