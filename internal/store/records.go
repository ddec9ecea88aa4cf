package store

import (
	"slices"

	"studio/internal/model"
)

// Logs returns every daily log, most recent first.
func (s *Store) Logs() []model.DailyLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.DailyLog, len(s.logs))
	for i, l := range s.logs {
		out[i] = l.Clone()
	}
	return out
}

// LogsForStudent returns the logs whose StudentIDs contain id, in store order.
func (s *Store) LogsForStudent(id string) []model.DailyLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.DailyLog{}
	for _, l := range s.logs {
		if l.Includes(id) {
			out = append(out, l.Clone())
		}
	}
	return out
}

// AddLog assigns an id and prepends the log so the newest is first.
func (s *Store) AddLog(in model.NewLog) model.DailyLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := model.DailyLog{
		ID:                  s.newID(PrefixLog),
		StudentIDs:          slices.Clone(in.StudentIDs),
		Date:                in.Date,
		EntryTime:           in.EntryTime,
		ExitTime:            in.ExitTime,
		ActivityTitle:       in.ActivityTitle,
		ActivityDescription: in.ActivityDescription,
		Homework:            in.Homework,
		MediaURLs:           slices.Clone(in.MediaURLs),
		TeacherNote:         in.TeacherNote,
	}
	if l.Date == "" {
		l.Date = s.today()
	}
	s.logs = slices.Insert(s.logs, 0, l)
	return l.Clone()
}

// Announcements returns the broadcasts plus those addressed to userID.
// An empty userID sees broadcasts only.
func (s *Store) Announcements(userID string) []model.Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Announcement{}
	for _, a := range s.announcements {
		if a.VisibleTo(userID) {
			out = append(out, a)
		}
	}
	return out
}

// AddAnnouncement assigns id and today's date, marks it unread and prepends it.
func (s *Store) AddAnnouncement(in model.NewAnnouncement) model.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Announcement{
		ID:          s.newID(PrefixAnnouncement),
		Title:       in.Title,
		Date:        s.today(),
		Content:     in.Content,
		Priority:    in.Priority,
		RecipientID: in.RecipientID,
	}
	if a.Priority == "" {
		a.Priority = model.PriorityLow
	}
	s.announcements = slices.Insert(s.announcements, 0, a)
	return a
}

// ArtworksForStudent returns the portfolio of studentID, newest first.
func (s *Store) ArtworksForStudent(studentID string) []model.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Artwork{}
	for _, a := range s.artworks {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out
}

// AddArtwork assigns id and today's date and prepends the artwork.
func (s *Store) AddArtwork(in model.NewArtwork) model.Artwork {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := model.Artwork{
		ID:          s.newID(PrefixArtwork),
		StudentID:   in.StudentID,
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Date:        s.today(),
	}
	s.artworks = slices.Insert(s.artworks, 0, a)
	return a
}
