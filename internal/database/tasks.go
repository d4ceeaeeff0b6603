package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Task defaults.
const (
	DefaultTaskStatus   = "pending"
	DefaultTaskPriority = "medium"
)

// Task is a unit of project work, optionally assigned to a user.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   *string    `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskFilter holds the optional equality filters for ListTasks.
type TaskFilter struct {
	ProjectID  *string
	Status     *string
	AssigneeID *string
}

// CreateTask inserts a task and returns its new id.
func (db *DB) CreateTask(ctx context.Context, t *Task) (string, error) {
	t.ID, t.CreatedAt = db.ids.Next(PrefixTask)
	t.Status = stringOr(t.Status, DefaultTaskStatus)
	t.Priority = stringOr(t.Priority, DefaultTaskPriority)

	var dueDate any
	if t.DueDate != nil {
		utc := t.DueDate.UTC()
		t.DueDate = &utc
		dueDate = utc
	}

	_, err := db.exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, dueDate, t.CreatedAt)
	if err != nil {
		return "", classify("create task", err)
	}
	return t.ID, nil
}

// ListTasks returns tasks matching f, newest first.
func (db *DB) ListTasks(ctx context.Context, f TaskFilter) ([]*Task, error) {
	rows, err := db.selectRows(ctx, SelectQuery{
		Table: tasksTable,
		Filters: []Filter{
			{Column: "project_id", Value: f.ProjectID},
			{Column: "status", Value: f.Status},
			{Column: "assignee_id", Value: f.AssigneeID},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks", err)
	}
	return tasks, nil
}

func scanTask(rows *sql.Rows) (*Task, error) {
	t := &Task{}
	var (
		projectID, description, status, priority, assigneeID sql.NullString
		dueDate                                              sql.NullTime
	)
	err := rows.Scan(&t.ID, &projectID, &t.Title, &description, &status, &priority, &assigneeID, &dueDate, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w: %w", ErrInternal, err)
	}
	t.ProjectID = nullStringToPtr(projectID)
	t.Description = nullStringToPtr(description)
	t.Status = nullStringValue(status)
	t.Priority = nullStringValue(priority)
	t.AssigneeID = nullStringToPtr(assigneeID)
	t.DueDate = nullTimeToPtr(dueDate)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}
