package service_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lozanotech/task-manager-api/internal/db"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	conn, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newAuthService(t *testing.T, expiry time.Duration) (*service.AuthService, repository.UserRepository) {
	t.Helper()

	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	sessions := repository.NewSessionRepository(conn)
	emails := service.NewEmailService("", "noreply@example.com", "Task Manager", true)

	return service.NewAuthService(users, sessions, emails, "test-secret", expiry, bcrypt.MinCost), users
}

func validRegistration() service.RegisterInput {
	return service.RegisterInput{
		Name:     "Alejandro",
		Email:    "hh@a.com",
		Password: "alejandro1234!$",
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	auth, users := newAuthService(t, time.Hour)

	user, token, err := auth.Register(validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	stored, err := users.ByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "alejandro1234!$", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("alejandro1234!$")))
}

func TestRegister_NormalizesEmail(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	input := validRegistration()
	input.Email = "  HH@A.com "
	user, _, err := auth.Register(input)
	require.NoError(t, err)
	assert.Equal(t, "hh@a.com", user.Email)
}

func TestRegister_Validation(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	tests := []struct {
		name   string
		mutate func(*service.RegisterInput)
	}{
		{"empty name", func(in *service.RegisterInput) { in.Name = "  " }},
		{"bad email", func(in *service.RegisterInput) { in.Email = "nope" }},
		{"short password", func(in *service.RegisterInput) { in.Password = "abc" }},
		{"forbidden password", func(in *service.RegisterInput) { in.Password = "Password123" }},
		{"negative age", func(in *service.RegisterInput) { in.Age = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			tt.mutate(&input)

			_, _, err := auth.Register(input)
			var invalid *service.InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	_, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	_, _, err = auth.Register(validRegistration())
	assert.ErrorIs(t, err, service.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	registered, _, err := auth.Register(validRegistration())
	require.NoError(t, err)

	user, token, err := auth.Login("hh@a.com", "alejandro1234!$")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = auth.Login("hh@a.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = auth.Login("nobody@a.com", "alejandro1234!$")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	user, token, err := auth.Register(validRegistration())
	require.NoError(t, err)

	userID, err := auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, err = auth.VerifyToken("not.a.jwt")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	auth, _ := newAuthService(t, -time.Second)

	_, token, err := auth.Register(validRegistration())
	require.NoError(t, err)

	_, err = auth.VerifyToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)
	other, _ := newAuthService(t, time.Hour)

	_, token, err := auth.Register(validRegistration())
	require.NoError(t, err)

	// Same signing algorithm, different process secret
	otherToken, err := other.GenerateJWT("someone")
	require.NoError(t, err)
	assert.NotEqual(t, token, otherToken)

	_, err = auth.VerifyToken(otherToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogout_RevokesSingleSession(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	user, first, err := auth.Register(validRegistration())
	require.NoError(t, err)

	_, second, err := auth.Login("hh@a.com", "alejandro1234!$")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(user.ID, first))

	// The revoked token still verifies cryptographically but the session
	// check now fails
	_, err = auth.VerifyToken(first)
	require.NoError(t, err)
	assert.Error(t, auth.CheckSession(user.ID, first))
	assert.NoError(t, auth.CheckSession(user.ID, second))

	// Logging out an already-revoked token is not an error
	assert.NoError(t, auth.Logout(user.ID, first))
}

func TestLogoutAll(t *testing.T) {
	auth, _ := newAuthService(t, time.Hour)

	user, first, err := auth.Register(validRegistration())
	require.NoError(t, err)
	_, second, err := auth.Login("hh@a.com", "alejandro1234!$")
	require.NoError(t, err)

	require.NoError(t, auth.LogoutAll(user.ID))

	assert.Error(t, auth.CheckSession(user.ID, first))
	assert.Error(t, auth.CheckSession(user.ID, second))
}
