package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

type createTaskRequest struct {
	ProjectID   *string `json:"projectId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

func (req createTaskRequest) task() (*database.Task, error) {
	title, err := requireString(req.Title, "title")
	if err != nil {
		return nil, err
	}

	var due *time.Time
	if v := optionalString(req.DueDate); v != nil {
		t, err := parseTime(*v, "dueDate")
		if err != nil {
			return nil, err
		}
		due = &t
	}

	return &database.Task{
		ProjectID:   optionalString(req.ProjectID),
		Title:       title,
		Description: optionalString(req.Description),
		Status:      strings.TrimSpace(req.Status),
		Priority:    strings.TrimSpace(req.Priority),
		AssigneeID:  optionalString(req.AssigneeID),
		DueDate:     due,
	}, nil
}

// ListTasks returns tasks filtered by projectId, status and assigneeId.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.db.ListTasks(r.Context(), database.TaskFilter{
		ProjectID:  optionalQuery(r, "projectId"),
		Status:     optionalQuery(r, "status"),
		AssigneeID: optionalQuery(r, "assigneeId"),
	})
	if err != nil {
		h.fail(w, r, "list tasks", err)
		return
	}
	h.jsonData(w, tasks)
}

// CreateTask stores a task and returns its id.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req := createTaskRequest{
		Status:   database.DefaultTaskStatus,
		Priority: database.DefaultTaskPriority,
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, "create task", err)
		return
	}

	t, err := req.task()
	if err != nil {
		h.fail(w, r, "create task", err)
		return
	}

	id, err := h.db.CreateTask(r.Context(), t)
	if err != nil {
		h.fail(w, r, "create task", err)
		return
	}
	h.jsonData(w, map[string]string{"id": id})
}
