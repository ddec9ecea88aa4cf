package portal

import (
	"context"
	"strings"

	"studio/internal/metrics"
	"studio/internal/model"
	"studio/internal/queue"
)

// SendMessage appends a message from sender to receiver and notifies the receiver.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID, content string) (model.DirectMessage, error) {
	if strings.TrimSpace(content) == "" {
		return model.DirectMessage{}, ErrEmptyMessage
	}
	msg := s.store.SendMessage(senderID, receiverID, content)
	metrics.MessagesSent.Inc()
	s.publish(ctx, queue.KindMessage, msg.ID, senderID, []string{receiverID})
	return msg, nil
}

// MessagesBetween returns the conversation of a and b, oldest first.
func (s *Service) MessagesBetween(a, b string) []model.DirectMessage {
	return s.store.MessagesBetween(a, b)
}

// MarkConversationRead marks messages from peer to reader as read and clears the
// reader's unread message counter.
func (s *Service) MarkConversationRead(ctx context.Context, readerID, peerID string) int {
	n := s.store.MarkConversationRead(readerID, peerID)
	if s.inbox != nil {
		if err := s.inbox.Clear(ctx, readerID, queue.KindMessage); err != nil {
			s.log.Warn().Err(err).Str("user_id", readerID).Msg("inbox clear failed")
		}
	}
	return n
}

// Contacts lists who the role may chat with: teachers see students, parents see
// teachers, the admin sees both.
func (s *Service) Contacts(role model.Role) []model.Contact {
	now := s.now()
	var out []model.Contact
	if role == model.RoleTeacher || role == model.RoleAdmin {
		for _, st := range s.store.Students() {
			out = append(out, model.StudentContact(st, now))
		}
	}
	if role == model.RoleParent || role == model.RoleAdmin {
		for _, t := range s.store.Teachers() {
			out = append(out, model.TeacherContact(t, now))
		}
	}
	if out == nil {
		out = []model.Contact{}
	}
	return out
}

// LastMessage returns the newest message of a conversation, if any.
func (s *Service) LastMessage(a, b string) (model.DirectMessage, bool) {
	return s.store.LastMessage(a, b)
}

// Notifications returns the unread counters of userID by event kind.
func (s *Service) Notifications(ctx context.Context, userID string) (map[string]int64, error) {
	if s.inbox == nil {
		return map[string]int64{}, nil
	}
	return s.inbox.Counts(ctx, userID)
}

// ClearNotifications resets one unread counter of userID.
func (s *Service) ClearNotifications(ctx context.Context, userID, kind string) error {
	if s.inbox == nil {
		return nil
	}
	return s.inbox.Clear(ctx, userID, kind)
}
