package store

import (
	"fmt"

	"studio/internal/model"
)

// StudentByID returns the student with id, or ErrNotFound.
func (s *Store) StudentByID(id string) (model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.studentIndex(id); i >= 0 {
		return s.students[i].Clone(), nil
	}
	return model.Student{}, ErrNotFound
}

// TeacherByID returns the teacher with id, or ErrNotFound.
func (s *Store) TeacherByID(id string) (model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.teacherIndex(id); i >= 0 {
		return s.teachers[i], nil
	}
	return model.Teacher{}, ErrNotFound
}

// Students returns every student in insertion order.
func (s *Store) Students() []model.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Student, len(s.students))
	for i, st := range s.students {
		out[i] = st.Clone()
	}
	return out
}

// Teachers returns every teacher in insertion order.
func (s *Store) Teachers() []model.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Teacher, len(s.teachers))
	copy(out, s.teachers)
	return out
}

// AddStudent appends a student. An empty id is generated.
func (s *Store) AddStudent(st model.Student) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = s.newID(PrefixStudent)
	} else if s.studentIndex(st.ID) >= 0 {
		return model.Student{}, fmt.Errorf("student %s: %w", st.ID, ErrDuplicateID)
	}
	st = st.Clone()
	s.students = append(s.students, st)
	return st.Clone(), nil
}

// UpdateStudent applies the non-nil fields of patch. Unknown ids leave the store untouched.
func (s *Store) UpdateStudent(id string, patch model.StudentPatch) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(id)
	if i < 0 {
		return model.Student{}, ErrNotFound
	}
	st := &s.students[i]
	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.ProfileImage != nil {
		st.ProfileImage = *patch.ProfileImage
	}
	return st.Clone(), nil
}

// UpdateTeacher applies the non-nil fields of patch. Unknown ids leave the store untouched.
func (s *Store) UpdateTeacher(id string, patch model.TeacherPatch) (model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.teacherIndex(id)
	if i < 0 {
		return model.Teacher{}, ErrNotFound
	}
	t := &s.teachers[i]
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.ProfileImage != nil {
		t.ProfileImage = *patch.ProfileImage
	}
	return *t, nil
}

// StudentCount returns the number of students.
func (s *Store) StudentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students)
}

// TeacherCount returns the number of teachers.
func (s *Store) TeacherCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teachers)
}

// ToggleStudentPresence flips the online flag of the student at index i.
// Going offline stamps LastSeen; going online leaves it as it was.
func (s *Store) ToggleStudentPresence(i int) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.students) {
		return model.Student{}, ErrNotFound
	}
	st := &s.students[i]
	st.IsOnline = !st.IsOnline
	if !st.IsOnline {
		st.LastSeen = s.now().UTC()
	}
	return st.Clone(), nil
}

// ToggleTeacherPresence flips the online flag of the teacher at index i.
func (s *Store) ToggleTeacherPresence(i int) (model.Teacher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.teachers) {
		return model.Teacher{}, ErrNotFound
	}
	t := &s.teachers[i]
	t.IsOnline = !t.IsOnline
	if !t.IsOnline {
		t.LastSeen = s.now().UTC()
	}
	return *t, nil
}

// UserIDs returns the ids of every student and teacher.
func (s *Store) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.students)+len(s.teachers))
	for _, st := range s.students {
		ids = append(ids, st.ID)
	}
	for _, t := range s.teachers {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *Store) studentIndex(id string) int {
	for i := range s.students {
		if s.students[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) teacherIndex(id string) int {
	for i := range s.teachers {
		if s.teachers[i].ID == id {
			return i
		}
	}
	return -1
}
