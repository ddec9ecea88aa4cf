package portal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio/internal/model"
	"studio/internal/notify"
	"studio/internal/queue"
	"studio/internal/store"
)

var baseTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func stepClock() func() time.Time {
	var mu sync.Mutex
	t := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type recorder struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, evt queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) all() []queue.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Event(nil), r.events...)
}

type fixture struct {
	svc    *Service
	store  *store.Store
	events *recorder
	inbox  *notify.MemoryInbox
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	clock := stepClock()
	st := store.NewSeeded(store.WithClock(clock))
	rec := &recorder{}
	inbox := notify.NewMemoryInbox()
	base := []Option{
		WithLatency(Latency{}),
		WithPublisher(rec),
		WithInbox(inbox),
		WithClock(clock),
	}
	svc := NewService(st, zerolog.Nop(), append(base, opts...)...)
	return fixture{svc: svc, store: st, events: rec, inbox: inbox}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		role     model.Role
		id       string
		password string
		wantName string
		wantErr  error
	}{
		{"parent", model.RoleParent, "ST-2024-001", "1234", "Aarav Sharma", nil},
		{"parent wrong password", model.RoleParent, "ST-2024-001", "wrong", "", ErrInvalidCredentials},
		{"parent unknown id", model.RoleParent, "ST-9999", "1234", "", ErrInvalidCredentials},
		{"teacher", model.RoleTeacher, "T-001", "1234", "Kashmira Jha", nil},
		{"teacher id as parent", model.RoleParent, "T-001", "1234", "", ErrInvalidCredentials},
		{"admin ignores id", model.RoleAdmin, "anything", "1234", "Admin", nil},
		{"admin wrong password", model.RoleAdmin, "admin", "nope", "", ErrInvalidCredentials},
		{"guest", model.RoleGuest, "ST-2024-001", "1234", "", ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := f.svc.Login(ctx, tc.role, tc.id, tc.password)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, user.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, user.Name)
			assert.Equal(t, tc.role, user.Role)
		})
	}
}

func TestLoginParentCarriesStudent(t *testing.T) {
	f := newFixture(t)
	user, err := f.svc.Login(context.Background(), model.RoleParent, "ST-2024-001", "1234")
	require.NoError(t, err)
	require.NotNil(t, user.Student)
	assert.Equal(t, "ST-2024-001", user.Student.ID)
	assert.Nil(t, user.Teacher)
}

func TestLoginHonorsCustomPassword(t *testing.T) {
	f := newFixture(t, WithSharedPassword("s3cret"))
	_, err := f.svc.Login(context.Background(), model.RoleTeacher, "T-002", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), model.RoleTeacher, "T-002", "s3cret")
	assert.NoError(t, err)
}

func TestPseudoAsyncCallsHonorCancellation(t *testing.T) {
	f := newFixture(t, WithLatency(Latency{
		Login:          time.Hour,
		ChangePassword: time.Hour,
		AddLog:         time.Hour,
		AddArtwork:     time.Hour,
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.svc.Login(ctx, model.RoleAdmin, "", "1234")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = f.svc.ChangePassword(ctx, "T-001", "new")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	before := len(f.svc.Logs())
	_, err = f.svc.AddLog(ctx, "T-001", model.NewLog{StudentIDs: []string{"ST-2024-001"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, f.svc.Logs(), before)

	_, err = f.svc.AddArtwork(ctx, model.NewArtwork{StudentID: "ST-2024-001", Title: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatencyIsApplied(t *testing.T) {
	f := newFixture(t, WithLatency(Latency{Login: 30 * time.Millisecond}))
	start := time.Now()
	_, err := f.svc.Login(context.Background(), model.RoleAdmin, "", "1234")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.ChangePassword(context.Background(), "ST-2024-001", "newpass"))
	assert.ErrorIs(t, f.svc.ChangePassword(context.Background(), "ST-2024-001", ""), ErrEmptyPassword)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	name := "Aarav S."

	user, err := f.svc.UpdateProfile(model.RoleParent, "ST-2024-001", model.ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Aarav S.", user.Name)
	st, _ := f.store.StudentByID("ST-2024-001")
	assert.Equal(t, "Aarav S.", st.Name)

	img := "https://img/new.png"
	user, err = f.svc.UpdateProfile(model.RoleTeacher, "T-002", model.ProfilePatch{ProfileImage: &img})
	require.NoError(t, err)
	assert.Equal(t, img, user.ProfileImage)
	assert.Equal(t, "Rohan Das", user.Name)

	_, err = f.svc.UpdateProfile(model.RoleAdmin, "admin", model.ProfilePatch{Name: &name})
	assert.ErrorIs(t, err, ErrProfileReadOnly)

	_, err = f.svc.UpdateProfile(model.RoleParent, "ST-0000", model.ProfilePatch{Name: &name})
	assert.True(t, IsNotFound(err))

	_, err = f.svc.UpdateProfile(model.RoleGuest, "x", model.ProfilePatch{})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.Profile(model.RoleTeacher, "T-003")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Lee", u.Name)

	u, err = f.svc.Profile(model.RoleAdmin, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.AdminUser(), u)

	_, err = f.svc.Profile(model.RoleParent, "nope")
	assert.True(t, IsNotFound(err))
}

func TestAddLogPublishesToStudents(t *testing.T) {
	f := newFixture(t)
	in := model.NewLog{
		StudentIDs:    []string{"ST-2024-001", "ST-2024-003"},
		ActivityTitle: "Clay Modelling",
	}

	created, err := f.svc.AddLog(context.Background(), "T-001", in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created, f.svc.LogsForStudent("ST-2024-003")[0])

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, queue.KindLog, events[0].Kind)
	assert.Equal(t, created.ID, events[0].RefID)
	assert.Equal(t, "T-001", events[0].ActorID)
	assert.Equal(t, []string{"ST-2024-001", "ST-2024-003"}, events[0].Recipients)
}

func TestAddLogValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddLog(ctx, "T-001", model.NewLog{})
	assert.ErrorIs(t, err, ErrNoStudents)

	_, err = f.svc.AddLog(ctx, "T-001", model.NewLog{StudentIDs: []string{"ST-2024-001", "ghost"}})
	assert.True(t, IsNotFound(err))
	assert.Empty(t, f.events.all())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("queue down")

	created, err := f.svc.AddLog(context.Background(), "T-001", model.NewLog{StudentIDs: []string{"ST-2024-002"}})
	require.NoError(t, err)
	assert.Equal(t, created.ID, f.svc.Logs()[0].ID)
}

func TestAddAnnouncementRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	direct := f.svc.AddAnnouncement(ctx, "T-001", model.NewAnnouncement{Title: "Bring aprons", RecipientID: "ST-2024-002"})
	broadcast := f.svc.AddAnnouncement(ctx, "admin", model.NewAnnouncement{Title: "Gala", Priority: model.PriorityHigh})

	events := f.events.all()
	require.Len(t, events, 2)
	assert.Equal(t, direct.ID, events[0].RefID)
	assert.Equal(t, []string{"ST-2024-002"}, events[0].Recipients)
	assert.Equal(t, broadcast.ID, events[1].RefID)
	assert.Equal(t, f.store.UserIDs(), events[1].Recipients)

	ids := func(list []model.Announcement) []string {
		var out []string
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}
	assert.Contains(t, ids(f.svc.Announcements("ST-2024-002")), direct.ID)
	assert.NotContains(t, ids(f.svc.Announcements("ST-2024-001")), direct.ID)
	assert.Contains(t, ids(f.svc.Announcements("ST-2024-001")), broadcast.ID)
}

func TestAddArtwork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	art, err := f.svc.AddArtwork(ctx, model.NewArtwork{StudentID: "ST-2024-002", Title: "Koi Pond"})
	require.NoError(t, err)
	assert.Equal(t, art, f.svc.ArtworksForStudent("ST-2024-002")[0])

	_, err = f.svc.AddArtwork(ctx, model.NewArtwork{StudentID: "ghost"})
	assert.True(t, IsNotFound(err))
}

func TestAddStudent(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.AddStudent(model.Student{Name: "Mira Rao", CurrentLevel: model.LevelOne})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = f.svc.AddStudent(model.Student{ID: "ST-2024-001"})
	assert.ErrorIs(t, err, store.ErrDuplicateID)
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, "ST-2024-001", "T-001", "Running late")
	require.NoError(t, err)
	assert.False(t, msg.Read)

	conv := f.svc.MessagesBetween("T-001", "ST-2024-001")
	last := conv[len(conv)-1]
	assert.Equal(t, msg.ID, last.ID)
	assert.Equal(t, "ST-2024-001", last.SenderID)
	assert.Equal(t, "T-001", last.ReceiverID)

	preview, ok := f.svc.LastMessage("T-001", "ST-2024-001")
	require.True(t, ok)
	assert.Equal(t, msg.ID, preview.ID)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, queue.Event{
		Kind:       queue.KindMessage,
		RefID:      msg.ID,
		ActorID:    "ST-2024-001",
		Recipients: []string{"T-001"},
		At:         events[0].At,
	}, events[0])

	_, err = f.svc.SendMessage(ctx, "ST-2024-001", "T-001", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestMarkConversationReadClearsInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, "ST-2024-002", "T-002", "Hello")
	require.NoError(t, err)
	require.NoError(t, f.inbox.Incr(ctx, "T-002", queue.KindMessage))
	require.NoError(t, f.inbox.Incr(ctx, "T-002", queue.KindLog))

	assert.Equal(t, 1, f.svc.MarkConversationRead(ctx, "T-002", "ST-2024-002"))
	assert.Equal(t, 0, f.svc.MarkConversationRead(ctx, "T-002", "ST-2024-002"))

	counts, err := f.svc.Notifications(ctx, "T-002")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{queue.KindLog: 1}, counts)

	require.NoError(t, f.svc.ClearNotifications(ctx, "T-002", queue.KindLog))
	counts, _ = f.svc.Notifications(ctx, "T-002")
	assert.Empty(t, counts)
}

func TestContacts(t *testing.T) {
	f := newFixture(t)

	teacherView := f.svc.Contacts(model.RoleTeacher)
	require.Len(t, teacherView, len(f.svc.Students()))
	assert.Equal(t, "ST-2024-001", teacherView[0].ID)
	assert.Equal(t, "Online", teacherView[0].Status)
	for _, c := range teacherView {
		assert.Equal(t, model.RoleParent, c.Role)
	}

	parentView := f.svc.Contacts(model.RoleParent)
	require.Len(t, parentView, len(f.svc.Teachers()))
	assert.Equal(t, "Kashmira Jha", parentView[0].Name)

	assert.Len(t, f.svc.Contacts(model.RoleAdmin), len(teacherView)+len(parentView))
	assert.Empty(t, f.svc.Contacts(model.RoleGuest))
}

func TestNotificationsWithoutInbox(t *testing.T) {
	svc := NewService(store.NewSeeded(), zerolog.Nop(), WithLatency(Latency{}))
	counts, err := svc.Notifications(context.Background(), "T-001")
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NoError(t, svc.ClearNotifications(context.Background(), "T-001", queue.KindLog))
}
