package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultProjectStatus is stored when a project is created without a status.
const DefaultProjectStatus = "active"

// Project is a collaboration space owned by a creator.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatorID   *string   `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectFilter holds the optional equality filters for ListProjects.
type ProjectFilter struct {
	CreatorID *string
	Status    *string
}

// CreateProject inserts a project and returns its new id.
func (db *DB) CreateProject(ctx context.Context, p *Project) (string, error) {
	p.ID, p.CreatedAt = db.ids.Next(PrefixProject)
	p.Status = stringOr(p.Status, DefaultProjectStatus)

	_, err := db.exec(ctx, `
		INSERT INTO projects (id, title, description, status, creator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Description, p.Status, p.CreatorID, p.CreatedAt)
	if err != nil {
		return "", classify("create project", err)
	}
	return p.ID, nil
}

// ListProjects returns projects matching f, newest first.
func (db *DB) ListProjects(ctx context.Context, f ProjectFilter) ([]*Project, error) {
	rows, err := db.selectRows(ctx, SelectQuery{
		Table: projectsTable,
		Filters: []Filter{
			{Column: "creator_id", Value: f.CreatorID},
			{Column: "status", Value: f.Status},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list projects", err)
	}
	return projects, nil
}

func scanProject(rows *sql.Rows) (*Project, error) {
	p := &Project{}
	var description, status, creatorID sql.NullString
	if err := rows.Scan(&p.ID, &p.Title, &description, &status, &creatorID, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan project: %w: %w", ErrInternal, err)
	}
	p.Description = nullStringToPtr(description)
	p.Status = nullStringValue(status)
	p.CreatorID = nullStringToPtr(creatorID)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}
