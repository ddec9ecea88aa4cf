package portal

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"studio/internal/metrics"
	"studio/internal/model"
	"studio/internal/store"
)

// Login resolves the user for role and id after the configured delay.
// Parents sign in with their student's id, teachers with their own; the admin id is ignored.
// Any mismatch yields ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, role model.Role, id, password string) (model.User, error) {
	if err := sleep(ctx, s.latency.Login); err != nil {
		return model.User{}, err
	}

	user, err := s.resolve(role, id, password)
	result := "ok"
	if err != nil {
		result = "denied"
	}
	metrics.Logins.WithLabelValues(string(role), result).Inc()
	if err != nil {
		s.log.Info().Str("role", string(role)).Str("user_id", id).Msg("login denied")
		return model.User{}, err
	}
	s.log.Info().Str("role", string(role)).Str("user_id", user.ID).Msg("login")
	return user, nil
}

func (s *Service) resolve(role model.Role, id, password string) (model.User, error) {
	if password != s.password {
		return model.User{}, ErrInvalidCredentials
	}
	switch role {
	case model.RoleParent:
		st, err := s.store.StudentByID(id)
		if err != nil {
			return model.User{}, ErrInvalidCredentials
		}
		return model.StudentUser(st), nil
	case model.RoleTeacher:
		t, err := s.store.TeacherByID(id)
		if err != nil {
			return model.User{}, ErrInvalidCredentials
		}
		return model.TeacherUser(t), nil
	case model.RoleAdmin:
		return model.AdminUser(), nil
	}
	return model.User{}, ErrInvalidCredentials
}

// ChangePassword acknowledges the change after the configured delay. Credentials are
// a single shared secret, so nothing is stored.
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if err := sleep(ctx, s.latency.ChangePassword); err != nil {
		return err
	}
	if newPassword == "" {
		return ErrEmptyPassword
	}
	s.log.Info().Str("user_id", userID).Msg("password change acknowledged")
	return nil
}

// Profile returns the current record behind a signed-in identity.
func (s *Service) Profile(role model.Role, id string) (model.User, error) {
	switch role {
	case model.RoleParent:
		st, err := s.store.StudentByID(id)
		if err != nil {
			return model.User{}, err
		}
		return model.StudentUser(st), nil
	case model.RoleTeacher:
		t, err := s.store.TeacherByID(id)
		if err != nil {
			return model.User{}, err
		}
		return model.TeacherUser(t), nil
	case model.RoleAdmin:
		return model.AdminUser(), nil
	}
	return model.User{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// UpdateProfile applies the name and photo fields of patch to the caller's own record.
func (s *Service) UpdateProfile(role model.Role, id string, patch model.ProfilePatch) (model.User, error) {
	switch role {
	case model.RoleParent:
		st, err := s.store.UpdateStudent(id, patch.Student())
		if err != nil {
			return model.User{}, fmt.Errorf("update student %s: %w", id, err)
		}
		return model.StudentUser(st), nil
	case model.RoleTeacher:
		t, err := s.store.UpdateTeacher(id, patch.Teacher())
		if err != nil {
			return model.User{}, fmt.Errorf("update teacher %s: %w", id, err)
		}
		return model.TeacherUser(t), nil
	case model.RoleAdmin:
		return model.User{}, ErrProfileReadOnly
	}
	return model.User{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// IsNotFound reports whether err signals an unknown id.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// UserExists reports whether id names a student or a teacher.
func (s *Service) UserExists(id string) bool {
	return slices.Contains(s.store.UserIDs(), id)
}
