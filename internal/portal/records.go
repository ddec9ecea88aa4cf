package portal

import (
	"context"
	"fmt"

	"studio/internal/metrics"
	"studio/internal/model"
	"studio/internal/queue"
	"studio/internal/store"
)

func (s *Service) Students() []model.Student { return s.store.Students() }

func (s *Service) Teachers() []model.Teacher { return s.store.Teachers() }

func (s *Service) StudentByID(id string) (model.Student, error) { return s.store.StudentByID(id) }

func (s *Service) TeacherByID(id string) (model.Teacher, error) { return s.store.TeacherByID(id) }

// AddStudent enrolls a student. An empty id is generated.
func (s *Service) AddStudent(st model.Student) (model.Student, error) {
	created, err := s.store.AddStudent(st)
	if err != nil {
		return model.Student{}, err
	}
	metrics.RecordsCreated.WithLabelValues("student").Inc()
	s.log.Info().Str("student_id", created.ID).Msg("student added")
	return created, nil
}

func (s *Service) Logs() []model.DailyLog { return s.store.Logs() }

func (s *Service) LogsForStudent(id string) []model.DailyLog { return s.store.LogsForStudent(id) }

// AddLog stores a daily log after the configured delay and notifies the students it names.
func (s *Service) AddLog(ctx context.Context, actorID string, in model.NewLog) (model.DailyLog, error) {
	if err := sleep(ctx, s.latency.AddLog); err != nil {
		return model.DailyLog{}, err
	}
	if len(in.StudentIDs) == 0 {
		return model.DailyLog{}, ErrNoStudents
	}
	for _, id := range in.StudentIDs {
		if _, err := s.store.StudentByID(id); err != nil {
			return model.DailyLog{}, fmt.Errorf("log student %s: %w", id, err)
		}
	}

	created := s.store.AddLog(in)
	metrics.RecordsCreated.WithLabelValues("log").Inc()
	s.log.Info().Str("log_id", created.ID).Strs("student_ids", created.StudentIDs).Msg("log added")
	s.publish(ctx, queue.KindLog, created.ID, actorID, created.StudentIDs)
	return created, nil
}

// Announcements returns broadcasts plus those addressed to userID.
func (s *Service) Announcements(userID string) []model.Announcement {
	return s.store.Announcements(userID)
}

// AddAnnouncement stores an announcement. Broadcasts notify every student and teacher
// known at this moment.
func (s *Service) AddAnnouncement(ctx context.Context, actorID string, in model.NewAnnouncement) model.Announcement {
	created := s.store.AddAnnouncement(in)
	metrics.RecordsCreated.WithLabelValues("announcement").Inc()

	recipients := []string{created.RecipientID}
	if created.RecipientID == "" {
		recipients = s.store.UserIDs()
	}
	s.publish(ctx, queue.KindAnnouncement, created.ID, actorID, recipients)
	return created
}

func (s *Service) ArtworksForStudent(studentID string) []model.Artwork {
	return s.store.ArtworksForStudent(studentID)
}

// AddArtwork adds a portfolio piece after the configured delay. The owner must exist.
func (s *Service) AddArtwork(ctx context.Context, in model.NewArtwork) (model.Artwork, error) {
	if err := sleep(ctx, s.latency.AddArtwork); err != nil {
		return model.Artwork{}, err
	}
	if _, err := s.store.StudentByID(in.StudentID); err != nil {
		return model.Artwork{}, fmt.Errorf("artwork owner %s: %w", in.StudentID, err)
	}
	created := s.store.AddArtwork(in)
	metrics.RecordsCreated.WithLabelValues("artwork").Inc()
	return created, nil
}

func (s *Service) Syllabus() []model.SyllabusItem { return store.Syllabus() }

func (s *Service) Gallery() []model.GalleryItem { return store.Gallery() }
