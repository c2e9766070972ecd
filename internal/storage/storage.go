package storage

import (
	"errors"
	"fmt"

	"github.com/lozanotech/task-manager-api/internal/config"
	"github.com/lozanotech/task-manager-api/internal/repository"
)

var ErrAvatarNotFound = errors.New("avatar not found")

// Storage persists re-encoded avatar images keyed by user ID.
type Storage interface {
	SaveAvatar(userID string, png []byte) error
	Avatar(userID string) ([]byte, error)
	DeleteAvatar(userID string) error
}

// New selects the avatar storage backend from config. "db" keeps the image on
// the user row; "s3" stores it in an S3-compatible bucket.
func New(cfg *config.Config, users repository.UserRepository) (Storage, error) {
	switch cfg.StorageDriver {
	case "", "db":
		return NewDBStorage(users), nil
	case "s3":
		return NewS3Storage(S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
