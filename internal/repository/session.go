package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lozanotech/task-manager-api/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRepository interface {
	Create(session *model.Session) error
	ByUserAndToken(userID, token string) (*model.Session, error)
	DeleteByUserAndToken(userID, token string) error
	DeleteByUser(userID string) error
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query := `INSERT INTO sessions (id, user_id, token, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query,
		session.ID,
		session.UserID,
		session.Token,
		session.CreatedAt,
	)
	return err
}

// ByUserAndToken is the revocation check: a cryptographically valid token no
// longer authenticates once its row is gone.
func (r *sessionRepository) ByUserAndToken(userID, token string) (*model.Session, error) {
	session := &model.Session{}
	query := `SELECT * FROM sessions WHERE user_id = $1 AND token = $2`

	err := r.db.Get(session, query, userID, token)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *sessionRepository) DeleteByUserAndToken(userID, token string) error {
	query := `DELETE FROM sessions WHERE user_id = $1 AND token = $2`

	result, err := r.db.Exec(query, userID, token)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) DeleteByUser(userID string) error {
	query := `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}
