package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lozanotech/task-manager-api/internal/ctxkeys"
	"github.com/lozanotech/task-manager-api/internal/model"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles POST /tasks. The owner always comes from the authenticated
// identity, never from the body.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var input struct {
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Create(user.ID, input.Description, input.Completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /tasks with optional completed, sortBy (field:asc|desc),
// limit and skip query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	tasks, err := h.taskService.Tasks(user.ID, parseTaskFilter(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ByID handles GET /tasks/{id}, owner-scoped.
func (h *TaskHandler) ByID(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	task, err := h.taskService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var fields map[string]any
	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Update(user.ID, r.PathValue("id"), fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.taskService.Delete(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// parseTaskFilter reads the listing query parameters. Unknown sort fields and
// non-numeric limit/skip values are ignored rather than rejected, so a sloppy
// client gets the unfiltered listing instead of an error.
func parseTaskFilter(r *http.Request) repository.TaskFilter {
	q := r.URL.Query()
	filter := repository.TaskFilter{}

	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}

	if v := q.Get("sortBy"); v != "" {
		field, direction, _ := strings.Cut(v, ":")
		filter.SortBy = field
		filter.SortDesc = direction == "desc"
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			filter.Limit = n
		}
	}

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			filter.Skip = n
		}
	}

	return filter
}
