package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/lozanotech/task-manager-api/internal/model"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/validation"
)

var (
	// ErrInvalidField is returned when a partial update carries a key
	// outside the allow-list for that entity.
	ErrInvalidField = errors.New("invalid updates")
)

// userUpdateFields is the allow-list for PATCH /users/me.
var userUpdateFields = map[string]bool{
	"name":     true,
	"email":    true,
	"age":      true,
	"password": true,
}

type UserService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	auth   *AuthService
	emails *EmailService
}

func NewUserService(
	users repository.UserRepository,
	tasks repository.TaskRepository,
	auth *AuthService,
	emails *EmailService,
) *UserService {
	return &UserService{
		users:  users,
		tasks:  tasks,
		auth:   auth,
		emails: emails,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.users.ByID(id)
}

// UpdateProfile applies a partial update. Only name, email, age and password
// may change; any other key rejects the whole request. The password is
// re-hashed only when the field is actually present.
func (s *UserService) UpdateProfile(userID string, fields map[string]any) (*model.User, error) {
	if len(fields) == 0 {
		return nil, ErrInvalidField
	}
	for key := range fields {
		if !userUpdateFields[key] {
			return nil, ErrInvalidField
		}
	}

	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if raw, ok := fields["name"]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, &InvalidInputError{Reason: "name must be a string"}
		}
		name = strings.TrimSpace(name)
		if err := validation.ValidateName(name); err != nil {
			return nil, invalidInput(err)
		}
		user.Name = name
	}

	if raw, ok := fields["email"]; ok {
		email, ok := raw.(string)
		if !ok {
			return nil, &InvalidInputError{Reason: "email must be a string"}
		}
		email = strings.TrimSpace(strings.ToLower(email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, invalidInput(err)
		}
		user.Email = email
	}

	if raw, ok := fields["age"]; ok {
		// JSON numbers decode as float64
		age, ok := raw.(float64)
		if !ok || age != math.Trunc(age) {
			return nil, &InvalidInputError{Reason: "age must be an integer"}
		}
		if err := validation.ValidateAge(int(age)); err != nil {
			return nil, invalidInput(err)
		}
		user.Age = int(age)
	}

	if raw, ok := fields["password"]; ok {
		password, ok := raw.(string)
		if !ok {
			return nil, &InvalidInputError{Reason: "password must be a string"}
		}
		if err := validation.ValidatePassword(password); err != nil {
			return nil, invalidInput(err)
		}
		hash, err := s.auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now()

	err = s.users.Update(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes the user, cascades to all their tasks and sends the
// farewell email. Sessions go with the user row via the foreign key.
func (s *UserService) DeleteAccount(userID string) (*model.User, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.tasks.DeleteByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user tasks: %w", err)
	}

	err = s.users.Delete(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	err = s.emails.SendCancellationEmail(user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send cancellation email", "error", err, "user_id", userID)
	}

	slog.Info("account deleted", "user_id", userID)
	return user, nil
}
