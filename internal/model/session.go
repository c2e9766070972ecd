package model

import (
	"time"
)

// Session is one live bearer token. A user holds zero or more sessions, one
// per signed-in client, so logging out of a single device leaves the others
// untouched. A token authenticates only while its session row still exists,
// even if the JWT signature remains valid.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}
