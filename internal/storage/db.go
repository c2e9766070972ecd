package storage

import (
	"errors"

	"github.com/lozanotech/task-manager-api/internal/repository"
)

// DBStorage keeps the encoded avatar in the users table. It is the default
// backend and needs no external service.
type DBStorage struct {
	users repository.UserRepository
}

func NewDBStorage(users repository.UserRepository) *DBStorage {
	return &DBStorage{users: users}
}

func (s *DBStorage) SaveAvatar(userID string, png []byte) error {
	return s.users.UpdateAvatar(userID, png)
}

func (s *DBStorage) Avatar(userID string) ([]byte, error) {
	avatar, err := s.users.AvatarByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return avatar, nil
}

func (s *DBStorage) DeleteAvatar(userID string) error {
	err := s.users.UpdateAvatar(userID, nil)
	if errors.Is(err, repository.ErrUserNotFound) {
		// Nothing stored for a user that is gone
		return nil
	}
	return err
}
