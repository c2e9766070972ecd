package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lozanotech/task-manager-api/internal/model"
	"github.com/lozanotech/task-manager-api/internal/repository"
)

// taskUpdateFields is the allow-list for PATCH /tasks/{id}. The owner is set
// once at creation and never from client input.
var taskUpdateFields = map[string]bool{
	"description": true,
	"completed":   true,
}

type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) Create(ownerID, description string, completed bool) (*model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &InvalidInputError{Reason: "description is required"}
	}

	now := time.Now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tasks.Create(task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (s *TaskService) ByID(ownerID, taskID string) (*model.Task, error) {
	return s.tasks.ByID(ownerID, taskID)
}

func (s *TaskService) Tasks(ownerID string, filter repository.TaskFilter) ([]*model.Task, error) {
	return s.tasks.Tasks(ownerID, filter)
}

// Update applies a partial update to an owned task. Keys outside
// {description, completed} reject the whole request.
func (s *TaskService) Update(ownerID, taskID string, fields map[string]any) (*model.Task, error) {
	if len(fields) == 0 {
		return nil, ErrInvalidField
	}
	for key := range fields {
		if !taskUpdateFields[key] {
			return nil, ErrInvalidField
		}
	}

	task, err := s.tasks.ByID(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if raw, ok := fields["description"]; ok {
		description, ok := raw.(string)
		if !ok {
			return nil, &InvalidInputError{Reason: "description must be a string"}
		}
		description = strings.TrimSpace(description)
		if description == "" {
			return nil, &InvalidInputError{Reason: "description is required"}
		}
		task.Description = description
	}

	if raw, ok := fields["completed"]; ok {
		completed, ok := raw.(bool)
		if !ok {
			return nil, &InvalidInputError{Reason: "completed must be a boolean"}
		}
		task.Completed = completed
	}

	task.UpdatedAt = time.Now()

	err = s.tasks.Update(task)
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) Delete(ownerID, taskID string) error {
	return s.tasks.Delete(ownerID, taskID)
}
