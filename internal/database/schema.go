package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Entity tables. Column order here is the SELECT order used by the scanners.
var (
	usersTable = &Table{
		Name:    "users",
		Columns: []string{"id", "email", "name", "avatar_url", "role", "created_at"},
		OrderBy: "created_at DESC, id DESC",
	}
	projectsTable = &Table{
		Name:    "projects",
		Columns: []string{"id", "title", "description", "status", "creator_id", "created_at"},
		OrderBy: "created_at DESC, id DESC",
	}
	sessionsTable = &Table{
		Name: "sessions",
		Columns: []string{
			"id", "project_id", "title", "description", "scheduled_at", "duration",
			"status", "type", "meeting_link", "location", "is_public", "max_participants",
			"tags", "agenda", "notes", "creator_id", "created_at",
		},
		OrderBy: "scheduled_at DESC, id DESC",
	}
	tasksTable = &Table{
		Name: "tasks",
		Columns: []string{
			"id", "project_id", "title", "description", "status", "priority",
			"assignee_id", "due_date", "created_at",
		},
		OrderBy: "created_at DESC, id DESC",
	}
	notificationsTable = &Table{
		Name:    "notifications",
		Columns: []string{"id", "user_id", "title", "message", "type", "is_read", "created_at"},
		OrderBy: "created_at DESC, id DESC",
	}
)

var entityTables = []*Table{usersTable, projectsTable, sessionsTable, tasksTable, notificationsTable}

// Foreign keys are declared for documentation; enforcement is left off, so
// inserts never check that a referenced row exists.
const schemaSQL = `
-- Platform members
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	avatar_url TEXT,
	role TEXT DEFAULT 'user',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT DEFAULT 'active',
	creator_id TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (creator_id) REFERENCES users (id)
);

-- Mentorship sessions scheduled inside a project
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	project_id TEXT,
	title TEXT NOT NULL,
	description TEXT,
	scheduled_at TIMESTAMP NOT NULL,
	duration INTEGER DEFAULT 60,
	status TEXT DEFAULT 'upcoming',
	type TEXT DEFAULT 'video',
	meeting_link TEXT,
	location TEXT,
	is_public BOOLEAN DEFAULT 0,
	max_participants INTEGER,
	tags TEXT,
	agenda TEXT,
	notes TEXT,
	creator_id TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects (id),
	FOREIGN KEY (creator_id) REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	project_id TEXT,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT DEFAULT 'pending',
	priority TEXT DEFAULT 'medium',
	assignee_id TEXT,
	due_date TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects (id),
	FOREIGN KEY (assignee_id) REFERENCES users (id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT,
	type TEXT DEFAULT 'info',
	is_read BOOLEAN DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users (id)
);

-- Filter columns
CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_project_status ON sessions(project_id, status);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);
`

// EnsureSchema creates any missing table or index. Existing tables and rows
// are never dropped or altered, so it is safe to call on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	log.Info().Msg("Ensuring database schema")

	statements := splitSQLStatements(schemaSQL)
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug().Int("statements", len(statements)).Msg("Database schema ready")
	return nil
}

// Tables lists the user tables present in the database, sorted by name.
func (db *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := db.query(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// MissingTables returns the entity tables that do not exist yet.
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	present, err := db.Tables(ctx)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, t := range entityTables {
		if !slices.Contains(present, t.Name) {
			missing = append(missing, t.Name)
		}
	}
	return missing, nil
}

// RowCounts returns the number of rows in each entity table that exists.
func (db *DB) RowCounts(ctx context.Context) (map[string]int, error) {
	present, err := db.Tables(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(entityTables))
	for _, t := range entityTables {
		if !slices.Contains(present, t.Name) {
			continue
		}
		n, err := db.count(ctx, SelectQuery{Table: t})
		if err != nil {
			return nil, err
		}
		counts[t.Name] = n
	}
	return counts, nil
}

// splitSQLStatements splits a SQL string into individual statements.
// It handles comments and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for line := range strings.SplitSeq(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}
