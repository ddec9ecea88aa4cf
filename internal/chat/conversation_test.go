package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/model"
)

const (
	parent  = "ST-2024-001"
	teacher = "T-001"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func msg(id, from, to, content string, at time.Time) model.DirectMessage {
	return model.DirectMessage{ID: id, SenderID: from, ReceiverID: to, Content: content, Timestamp: at}
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestMergeInitialLoadReportsEverything(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	fetched := []model.DirectMessage{
		msg("m1", parent, teacher, "hi", t0),
		msg("m2", teacher, parent, "hello", t0.Add(time.Minute)),
	}

	added := c.Merge(fetched)
	assert.Equal(t, fetched, added)
	assert.Equal(t, []string{"m1", "m2"}, ids(c.Entries()))

	assert.Empty(t, c.Merge(fetched))
}

func TestOptimisticEntryIsReplacedByMatchingRecord(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	c.Merge([]model.DirectMessage{msg("m1", teacher, parent, "hello", t0)})

	temp := c.AddOptimistic("Running late", t0.Add(time.Minute))
	assert.True(t, IsTemp(temp.ID))
	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Pending)

	// A poll that has not caught up keeps the pending entry.
	assert.Empty(t, c.Merge([]model.DirectMessage{msg("m1", teacher, parent, "hello", t0)}))
	assert.Equal(t, []string{"m1", temp.ID}, ids(c.Entries()))

	added := c.Merge([]model.DirectMessage{
		msg("m1", teacher, parent, "hello", t0),
		msg("m9", parent, teacher, "Running late", t0.Add(time.Minute+2*time.Second)),
	})
	assert.Empty(t, added, "own message is not reported as new")
	entries = c.Entries()
	assert.Equal(t, []string{"m1", "m9"}, ids(entries))
	assert.False(t, entries[1].Pending)
}

func TestTwoIdenticalSendsBeforePoll(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	a := c.AddOptimistic("ok", t0)
	b := c.AddOptimistic("ok", t0.Add(time.Second))

	c.Merge([]model.DirectMessage{msg("m1", parent, teacher, "ok", t0)})
	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "m1", entries[0].ID)
	assert.Equal(t, b.ID, entries[1].ID)
	assert.True(t, entries[1].Pending)
	assert.NotEqual(t, a.ID, entries[1].ID)

	c.Merge([]model.DirectMessage{
		msg("m1", parent, teacher, "ok", t0),
		msg("m2", parent, teacher, "ok", t0.Add(time.Second)),
	})
	assert.Equal(t, []string{"m1", "m2"}, ids(c.Entries()))
}

func TestOlderIdenticalRecordDoesNotAbsorbNewSend(t *testing.T) {
	c := NewConversation(parent, teacher, time.Hour)
	c.Merge([]model.DirectMessage{msg("m1", parent, teacher, "thanks", t0)})

	temp := c.AddOptimistic("thanks", t0.Add(time.Minute))
	c.Merge([]model.DirectMessage{msg("m1", parent, teacher, "thanks", t0)})
	assert.Equal(t, []string{"m1", temp.ID}, ids(c.Entries()))
}

func TestMatchRespectsWindowAndParties(t *testing.T) {
	tests := []struct {
		name    string
		fetched model.DirectMessage
	}{
		{"outside window", msg("m5", parent, teacher, "see you", t0.Add(time.Minute))},
		{"other content", msg("m5", parent, teacher, "see ya", t0)},
		{"other direction", msg("m5", teacher, parent, "see you", t0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConversation(parent, teacher, 10*time.Second)
			temp := c.AddOptimistic("see you", t0)
			added := c.Merge([]model.DirectMessage{tc.fetched})
			assert.Equal(t, []model.DirectMessage{tc.fetched}, added)
			assert.Contains(t, ids(c.Entries()), temp.ID)
		})
	}
}

func TestConfirmSwapsInPlace(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	first := c.AddOptimistic("one", t0)
	second := c.AddOptimistic("two", t0.Add(time.Second))

	rec := msg("m7", parent, teacher, "one", t0.Add(500*time.Millisecond))
	require.True(t, c.Confirm(first.ID, rec))
	assert.Equal(t, []string{"m7", second.ID}, ids(c.Entries()))
	assert.False(t, c.Confirm(first.ID, rec))

	// A stale fetch that predates the send keeps the confirmed record.
	c.Merge(nil)
	assert.Equal(t, []string{"m7", second.ID}, ids(c.Entries()))

	// Once fetched, the record is not reported as new.
	added := c.Merge([]model.DirectMessage{rec})
	assert.Empty(t, added)
	assert.Equal(t, []string{"m7", second.ID}, ids(c.Entries()))

	// After the server has returned it, the record follows the server again.
	c.Merge(nil)
	assert.Equal(t, []string{second.ID}, ids(c.Entries()))
}

func TestConfirmAfterPollDelivered(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	temp := c.AddOptimistic("hey", t0)
	rec := msg("m3", parent, teacher, "hey", t0)

	c.Merge([]model.DirectMessage{rec})
	assert.False(t, c.Confirm(temp.ID, rec), "poll already reconciled it")
	assert.Equal(t, []string{"m3"}, ids(c.Entries()))
}

func TestConfirmWhenRecordSeenButPendingUnmatched(t *testing.T) {
	c := NewConversation(parent, teacher, time.Millisecond)
	temp := c.AddOptimistic("hey", t0)
	rec := msg("m3", parent, teacher, "hey", t0.Add(time.Second))

	c.Merge([]model.DirectMessage{rec})
	require.Len(t, c.Entries(), 2)
	assert.True(t, c.Confirm(temp.ID, rec))
	assert.Equal(t, []string{"m3"}, ids(c.Entries()))
}

func TestDiscard(t *testing.T) {
	c := NewConversation(parent, teacher, 10*time.Second)
	temp := c.AddOptimistic("lost", t0)
	assert.True(t, c.Discard(temp.ID))
	assert.False(t, c.Discard(temp.ID))
	assert.Empty(t, c.Entries())
}

func TestMergeOrdersByTimestamp(t *testing.T) {
	c := NewConversation(parent, teacher, time.Second)
	temp := c.AddOptimistic("draft", t0.Add(30*time.Second))
	c.Merge([]model.DirectMessage{
		msg("m1", teacher, parent, "a", t0),
		msg("m2", teacher, parent, "b", t0.Add(time.Minute)),
	})
	assert.Equal(t, []string{"m1", temp.ID, "m2"}, ids(c.Entries()))
}
