package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/lozanotech/task-manager-api/internal/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

// taskSortColumns maps external sort field names to columns. Anything not in
// here is silently ignored and the default order applies.
var taskSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// TaskFilter narrows and orders a task listing. The zero value lists every
// task of the owner in creation order.
type TaskFilter struct {
	Completed *bool
	SortBy    string // external field name, see taskSortColumns
	SortDesc  bool
	Limit     int // <= 0 means no limit
	Skip      int // <= 0 means no offset
}

type TaskRepository interface {
	Create(task *model.Task) error
	ByID(userID, taskID string) (*model.Task, error)
	Tasks(userID string, filter TaskFilter) ([]*model.Task, error)
	Update(task *model.Task) error
	Delete(userID, taskID string) error
	DeleteByUser(userID string) error
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(task *model.Task) error {
	query := `INSERT INTO tasks (id, user_id, description, completed, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		task.ID,
		task.UserID,
		task.Description,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

// ByID scopes by owner: a task owned by someone else is indistinguishable
// from one that does not exist.
func (r *taskRepository) ByID(userID, taskID string) (*model.Task, error) {
	task := &model.Task{}
	query := `SELECT * FROM tasks WHERE id = $1 AND user_id = $2`

	err := r.db.Get(task, query, taskID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}

	return task, err
}

func (r *taskRepository) Tasks(userID string, filter TaskFilter) ([]*model.Task, error) {
	args := []any{userID}
	query := `SELECT * FROM tasks WHERE user_id = $1`

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += fmt.Sprintf(" AND completed = $%d", len(args))
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if ok && filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)

	if filter.Limit > 0 || filter.Skip > 0 {
		limit := filter.Limit
		if limit <= 0 {
			// OFFSET needs a LIMIT clause on SQLite
			limit = math.MaxInt32
		}
		skip := filter.Skip
		if skip < 0 {
			skip = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, skip)
	}

	var tasks []*model.Task
	err := r.db.Select(&tasks, query, args...)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) Update(task *model.Task) error {
	query := `UPDATE tasks SET description = $1, completed = $2, updated_at = $3
	          WHERE id = $4 AND user_id = $5`

	result, err := r.db.Exec(query,
		task.Description,
		task.Completed,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *taskRepository) Delete(userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(query, taskID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteByUser removes every task of an owner. Used by the account deletion
// cascade.
func (r *taskRepository) DeleteByUser(userID string) error {
	query := `DELETE FROM tasks WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}
