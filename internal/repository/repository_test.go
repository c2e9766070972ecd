package repository_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lozanotech/task-manager-api/internal/db"
	"github.com/lozanotech/task-manager-api/internal/model"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func newUser(t *testing.T, users repository.UserRepository, email string) *model.User {
	t.Helper()

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         "Alejandro",
		Email:        email,
		PasswordHash: "$2a$08$notarealhash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, users.Create(user))
	return user
}

func newTask(t *testing.T, tasks repository.TaskRepository, userID, description string, completed bool) *model.Task {
	t.Helper()

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, tasks.Create(task))

	// Keep creation order distinguishable for sort tests
	time.Sleep(2 * time.Millisecond)
	return task
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)

	newUser(t, users, "hh@a.com")

	dup := &model.User{
		ID:           uuid.New().String(),
		Name:         "Other",
		Email:        "hh@a.com",
		PasswordHash: "$2a$08$notarealhash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	err := users.Create(dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUserRepository_ByEmail(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)

	created := newUser(t, users, "hh@a.com")

	found, err := users.ByEmail("hh@a.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = users.ByEmail("nobody@a.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)

	user := newUser(t, users, "hh@a.com")

	require.NoError(t, users.Delete(user.ID))

	_, err := users.ByID(user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	assert.ErrorIs(t, users.Delete(user.ID), repository.ErrUserNotFound)
}

func TestUserRepository_Avatar(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)

	user := newUser(t, users, "hh@a.com")

	avatar := []byte{0x89, 0x50, 0x4e, 0x47}
	require.NoError(t, users.UpdateAvatar(user.ID, avatar))

	got, err := users.AvatarByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, avatar, got)

	require.NoError(t, users.UpdateAvatar(user.ID, nil))
	got, err = users.AvatarByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, users.UpdateAvatar("missing", avatar), repository.ErrUserNotFound)
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	sessions := repository.NewSessionRepository(conn)

	user := newUser(t, users, "hh@a.com")

	require.NoError(t, sessions.Create(&model.Session{UserID: user.ID, Token: "tok-1"}))
	require.NoError(t, sessions.Create(&model.Session{UserID: user.ID, Token: "tok-2"}))

	_, err := sessions.ByUserAndToken(user.ID, "tok-1")
	require.NoError(t, err)

	// Revoke one: the other stays
	require.NoError(t, sessions.DeleteByUserAndToken(user.ID, "tok-1"))
	_, err = sessions.ByUserAndToken(user.ID, "tok-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	_, err = sessions.ByUserAndToken(user.ID, "tok-2")
	require.NoError(t, err)

	// Revoke all
	require.NoError(t, sessions.DeleteByUser(user.ID))
	_, err = sessions.ByUserAndToken(user.ID, "tok-2")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_CascadeOnUserDelete(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	sessions := repository.NewSessionRepository(conn)

	user := newUser(t, users, "hh@a.com")
	require.NoError(t, sessions.Create(&model.Session{UserID: user.ID, Token: "tok-1"}))

	require.NoError(t, users.Delete(user.ID))

	_, err := sessions.ByUserAndToken(user.ID, "tok-1")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	tasks := repository.NewTaskRepository(conn)

	alice := newUser(t, users, "alice@a.com")
	bob := newUser(t, users, "bob@a.com")

	task := newTask(t, tasks, bob.ID, "bob task", false)

	// Someone else's task is indistinguishable from a missing one
	_, err := tasks.ByID(alice.ID, task.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	err = tasks.Delete(alice.ID, task.ID)
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)

	// Still there for the owner
	got, err := tasks.ByID(bob.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob task", got.Description)
}

func TestTaskRepository_FilterAndSort(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	tasks := repository.NewTaskRepository(conn)

	user := newUser(t, users, "hh@a.com")
	newTask(t, tasks, user.ID, "alpha", true)
	newTask(t, tasks, user.ID, "bravo", false)
	newTask(t, tasks, user.ID, "charlie", true)

	completed := true
	got, err := tasks.Tasks(user.ID, repository.TaskFilter{Completed: &completed})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, task := range got {
		assert.True(t, task.Completed)
	}

	got, err = tasks.Tasks(user.ID, repository.TaskFilter{SortBy: "description", SortDesc: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "charlie", got[0].Description)
	assert.Equal(t, "alpha", got[2].Description)

	// Unknown sort field falls back to creation order
	got, err = tasks.Tasks(user.ID, repository.TaskFilter{SortBy: "nonsense"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].Description)
}

func TestTaskRepository_Pagination(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	tasks := repository.NewTaskRepository(conn)

	user := newUser(t, users, "hh@a.com")
	for _, description := range []string{"one", "two", "three", "four"} {
		newTask(t, tasks, user.ID, description, false)
	}

	got, err := tasks.Tasks(user.ID, repository.TaskFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Description)

	got, err = tasks.Tasks(user.ID, repository.TaskFilter{Limit: 2, Skip: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Description)

	// Skip without limit
	got, err = tasks.Tasks(user.ID, repository.TaskFilter{Skip: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "four", got[0].Description)

	// Skip past the end
	got, err = tasks.Tasks(user.ID, repository.TaskFilter{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTaskRepository_DeleteByUser(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	tasks := repository.NewTaskRepository(conn)

	alice := newUser(t, users, "alice@a.com")
	bob := newUser(t, users, "bob@a.com")
	newTask(t, tasks, alice.ID, "a1", false)
	newTask(t, tasks, alice.ID, "a2", false)
	bobTask := newTask(t, tasks, bob.ID, "b1", false)

	require.NoError(t, tasks.DeleteByUser(alice.ID))

	got, err := tasks.Tasks(alice.ID, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = tasks.ByID(bob.ID, bobTask.ID)
	assert.NoError(t, err)
}

func TestTaskRepository_Update(t *testing.T) {
	conn := newTestDB(t)
	users := repository.NewUserRepository(conn)
	tasks := repository.NewTaskRepository(conn)

	user := newUser(t, users, "hh@a.com")
	task := newTask(t, tasks, user.ID, "before", false)

	task.Description = "after"
	task.Completed = true
	task.UpdatedAt = time.Now()
	require.NoError(t, tasks.Update(task))

	got, err := tasks.ByID(user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Description)
	assert.True(t, got.Completed)

	task.UserID = "someone-else"
	assert.ErrorIs(t, tasks.Update(task), repository.ErrTaskNotFound)
}
