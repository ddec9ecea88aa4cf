package model

import (
	"fmt"
	"time"
)

// StudentPatch lists the only student fields a profile update may change.
// Nil fields are left untouched.
type StudentPatch struct {
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

// TeacherPatch lists the only teacher fields a profile update may change.
type TeacherPatch struct {
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

// ProfilePatch is the role-agnostic form accepted by the portal; it converts to the
// per-entity patches above.
type ProfilePatch struct {
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

// Student returns the patch as applied to a student record.
func (p ProfilePatch) Student() StudentPatch {
	return StudentPatch{Name: p.Name, ProfileImage: p.ProfileImage}
}

// Teacher returns the patch as applied to a teacher record.
func (p ProfilePatch) Teacher() TeacherPatch {
	return TeacherPatch{Name: p.Name, ProfileImage: p.ProfileImage}
}

// NewLog is a daily log before the store assigns its id.
type NewLog struct {
	StudentIDs          []string `json:"studentIds"`
	Date                string   `json:"date"`
	EntryTime           string   `json:"entryTime"`
	ExitTime            string   `json:"exitTime"`
	ActivityTitle       string   `json:"activityTitle"`
	ActivityDescription string   `json:"activityDescription"`
	Homework            string   `json:"homework"`
	MediaURLs           []string `json:"mediaUrls"`
	TeacherNote         string   `json:"teacherNote,omitempty"`
}

// NewArtwork is an artwork before the store assigns id and date.
type NewArtwork struct {
	StudentID   string `json:"studentId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// NewAnnouncement is an announcement before the store assigns id, date and read flag.
type NewAnnouncement struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Priority    Priority `json:"priority"`
	RecipientID string   `json:"recipientId,omitempty"`
}

// Contact is a chat-list entry for a student or teacher, with presence for display.
type Contact struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profileImage"`
	Subtitle     string    `json:"subtitle"`
	Role         Role      `json:"role"`
	IsOnline     bool      `json:"isOnline"`
	LastSeen     time.Time `json:"lastSeen"`
	Status       string    `json:"status"`
}

// StudentContact builds the contact entry teachers see for a student.
func StudentContact(s Student, now time.Time) Contact {
	return Contact{
		ID:           s.ID,
		Name:         s.Name,
		ProfileImage: s.ProfileImage,
		Subtitle:     fmt.Sprintf("Level %d", s.CurrentLevel),
		Role:         RoleParent,
		IsOnline:     s.IsOnline,
		LastSeen:     s.LastSeen,
		Status:       PresenceStatus(s.IsOnline, s.LastSeen, now),
	}
}

// TeacherContact builds the contact entry parents see for a teacher.
func TeacherContact(t Teacher, now time.Time) Contact {
	return Contact{
		ID:           t.ID,
		Name:         t.Name,
		ProfileImage: t.ProfileImage,
		Subtitle:     t.Specialization,
		Role:         RoleTeacher,
		IsOnline:     t.IsOnline,
		LastSeen:     t.LastSeen,
		Status:       PresenceStatus(t.IsOnline, t.LastSeen, now),
	}
}

// PresenceStatus renders the presence line shown next to a contact.
// LastSeen is ignored while online.
func PresenceStatus(online bool, lastSeen, now time.Time) string {
	if online {
		return "Online"
	}
	if lastSeen.IsZero() {
		return "Offline"
	}
	lastSeen = lastSeen.In(now.Location())
	ly, lm, ld := lastSeen.Date()
	ny, nm, nd := now.Date()
	if ly == ny && lm == nm && ld == nd {
		return "Last seen today at " + lastSeen.Format("15:04")
	}
	return "Last seen on " + lastSeen.Format(DateLayout)
}

// SyllabusItem describes one studio level.
type SyllabusItem struct {
	Level       ClassLevel `json:"level"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Modules     []string   `json:"modules"`
}

// GalleryItem is a showcase image on the public site.
type GalleryItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Date  string `json:"date"`
}
