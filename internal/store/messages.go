package store

import (
	"sort"

	"studio/internal/model"
)

// MessagesBetween returns the conversation of a and b in either direction,
// ascending by timestamp. Equal timestamps keep insertion order.
func (s *Store) MessagesBetween(a, b string) []model.DirectMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversation(a, b)
}

// LastMessage returns the most recent message of the conversation of a and b.
func (s *Store) LastMessage(a, b string) (model.DirectMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.conversation(a, b)
	if len(conv) == 0 {
		return model.DirectMessage{}, false
	}
	return conv[len(conv)-1], true
}

// SendMessage appends an unread message stamped with the current time.
func (s *Store) SendMessage(senderID, receiverID, content string) model.DirectMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := model.DirectMessage{
		ID:         s.newID(PrefixMessage),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  s.now().UTC(),
	}
	s.messages = append(s.messages, m)
	return m
}

// MarkConversationRead marks every message sent by peerID to readerID as read
// and returns how many changed.
func (s *Store) MarkConversationRead(readerID, peerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.messages {
		m := &s.messages[i]
		if m.SenderID == peerID && m.ReceiverID == readerID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n
}

func (s *Store) conversation(a, b string) []model.DirectMessage {
	out := []model.DirectMessage{}
	for _, m := range s.messages {
		if m.Between(a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
