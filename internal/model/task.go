package model

import (
	"time"
)

type Task struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"owner"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
