package model

import (
	"slices"
	"time"
)

// DateLayout is the calendar-date format used for admission, log, artwork and announcement dates.
const DateLayout = "2006-01-02"

// Role identifies which portal a user signs into.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a role that can sign in.
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ClassLevel is the ordinal studio level, 1 through 7.
type ClassLevel int

const (
	LevelOne ClassLevel = iota + 1
	LevelTwo
	LevelThree
	LevelFour
	LevelFive
	LevelSix
	LevelSeven
)

// Valid reports whether l is within the studio's seven levels.
func (l ClassLevel) Valid() bool { return l >= LevelOne && l <= LevelSeven }

// ClassSchedule is one weekly slot of a student's timetable.
type ClassSchedule struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	Subject string `json:"subject"`
}

// Student is an enrolled child; parents sign in with the student's id.
type Student struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	SchoolName    string          `json:"schoolName"`
	Address       string          `json:"address"`
	AdmissionDate string          `json:"admissionDate"`
	CurrentLevel  ClassLevel      `json:"currentLevel"`
	ProfileImage  string          `json:"profileImage"`
	Schedule      []ClassSchedule `json:"schedule"`
	IsOnline      bool            `json:"isOnline"`
	LastSeen      time.Time       `json:"lastSeen"`
}

// Clone returns a copy that shares no slices with s.
func (s Student) Clone() Student {
	s.Schedule = slices.Clone(s.Schedule)
	return s
}

// Teacher is a studio instructor.
type Teacher struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Specialization  string    `json:"specialization"`
	ProfileImage    string    `json:"profileImage"`
	UpcomingClasses int       `json:"upcomingClasses"`
	IsOnline        bool      `json:"isOnline"`
	LastSeen        time.Time `json:"lastSeen"`
}

// DailyLog records one class session for one or more students.
type DailyLog struct {
	ID                  string   `json:"id"`
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

// Clone returns a copy that shares no slices with l.
func (l DailyLog) Clone() DailyLog {
	l.StudentIDs = slices.Clone(l.StudentIDs)
	l.MediaURLs = slices.Clone(l.MediaURLs)
	return l
}

// Includes reports whether the log applies to studentID.
func (l DailyLog) Includes(studentID string) bool {
	return slices.Contains(l.StudentIDs, studentID)
}

// Priority of an announcement.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityHigh Priority = "high"
)

// Announcement is a notice shown on dashboards. An empty RecipientID means broadcast.
type Announcement struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Content     string   `json:"content"`
	Priority    Priority `json:"priority"`
	Read        bool     `json:"read"`
	RecipientID string   `json:"recipientId,omitempty"`
}

// VisibleTo reports whether userID may see the announcement.
func (a Announcement) VisibleTo(userID string) bool {
	return a.RecipientID == "" || a.RecipientID == userID
}

// Artwork is a piece of a student's work in their portfolio.
type Artwork struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Date        string `json:"date"`
}

// DirectMessage is one chat message between two users.
type DirectMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Between reports whether the message belongs to the conversation of a and b, in either direction.
func (m DirectMessage) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// User is the signed-in identity returned by login. Exactly one of Student and Teacher
// is set for parents and teachers; neither is set for the admin.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ProfileImage string   `json:"profileImage"`
	Role         Role     `json:"role"`
	Student      *Student `json:"student,omitempty"`
	Teacher      *Teacher `json:"teacher,omitempty"`
}

// StudentUser wraps a student record as the parent's signed-in user.
func StudentUser(s Student) User {
	return User{ID: s.ID, Name: s.Name, ProfileImage: s.ProfileImage, Role: RoleParent, Student: &s}
}

// TeacherUser wraps a teacher record as a signed-in user.
func TeacherUser(t Teacher) User {
	return User{ID: t.ID, Name: t.Name, ProfileImage: t.ProfileImage, Role: RoleTeacher, Teacher: &t}
}

// AdminUser is the synthesized admin identity; it has no backing record.
func AdminUser() User {
	return User{ID: "admin", Name: "Admin", Role: RoleAdmin}
}
