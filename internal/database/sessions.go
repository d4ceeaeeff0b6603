package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Session defaults.
const (
	DefaultSessionStatus   = "upcoming"
	DefaultSessionType     = "video"
	DefaultSessionDuration = 60
)

// Session is a scheduled mentorship meeting, usually inside a project.
type Session struct {
	ID              string    `json:"id"`
	ProjectID       *string   `json:"project_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Duration        int       `json:"duration"` // minutes
	Status          string    `json:"status"`
	Type            string    `json:"type"`
	MeetingLink     *string   `json:"meeting_link"`
	Location        *string   `json:"location"`
	IsPublic        bool      `json:"is_public"`
	MaxParticipants *int64    `json:"max_participants"`
	Tags            string    `json:"tags"`
	Agenda          string    `json:"agenda"`
	Notes           *string   `json:"notes"`
	CreatorID       *string   `json:"creator_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionFilter holds the optional equality filters for ListSessions.
// A Status of Wildcard matches every status.
type SessionFilter struct {
	ProjectID *string
	Status    *string
}

// CreateSession inserts a session and returns its new id.
func (db *DB) CreateSession(ctx context.Context, s *Session) (string, error) {
	s.ID, s.CreatedAt = db.ids.Next(PrefixSession)
	s.Status = stringOr(s.Status, DefaultSessionStatus)
	s.Type = stringOr(s.Type, DefaultSessionType)
	if s.Duration == 0 {
		s.Duration = DefaultSessionDuration
	}
	s.ScheduledAt = s.ScheduledAt.UTC()

	_, err := db.exec(ctx, `
		INSERT INTO sessions (
			id, project_id, title, description, scheduled_at, duration,
			status, type, meeting_link, location, is_public, max_participants,
			tags, agenda, notes, creator_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ProjectID, s.Title, s.Description, s.ScheduledAt, s.Duration,
		s.Status, s.Type, s.MeetingLink, s.Location, s.IsPublic, s.MaxParticipants,
		s.Tags, s.Agenda, s.Notes, s.CreatorID, s.CreatedAt)
	if err != nil {
		return "", classify("create session", err)
	}
	return s.ID, nil
}

// ListSessions returns sessions matching f, latest scheduled first.
func (db *DB) ListSessions(ctx context.Context, f SessionFilter) ([]*Session, error) {
	rows, err := db.selectRows(ctx, SelectQuery{
		Table: sessionsTable,
		Filters: []Filter{
			{Column: "project_id", Value: f.ProjectID},
			{Column: "status", Value: f.Status},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list sessions", err)
	}
	return sessions, nil
}

func scanSession(rows *sql.Rows) (*Session, error) {
	s := &Session{}
	var (
		projectID, description, status, sessionType sql.NullString
		meetingLink, location, tags, agenda         sql.NullString
		notes, creatorID                            sql.NullString
		duration, maxParticipants                   sql.NullInt64
		isPublic                                    sql.NullBool
	)
	err := rows.Scan(
		&s.ID, &projectID, &s.Title, &description, &s.ScheduledAt, &duration,
		&status, &sessionType, &meetingLink, &location, &isPublic, &maxParticipants,
		&tags, &agenda, &notes, &creatorID, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w: %w", ErrInternal, err)
	}

	s.ProjectID = nullStringToPtr(projectID)
	s.Description = nullStringToPtr(description)
	s.Duration = int(duration.Int64)
	s.Status = nullStringValue(status)
	s.Type = nullStringValue(sessionType)
	s.MeetingLink = nullStringToPtr(meetingLink)
	s.Location = nullStringToPtr(location)
	s.IsPublic = isPublic.Bool
	s.MaxParticipants = nullInt64ToPtr(maxParticipants)
	s.Tags = nullStringValue(tags)
	s.Agenda = nullStringValue(agenda)
	s.Notes = nullStringToPtr(notes)
	s.CreatorID = nullStringToPtr(creatorID)
	s.ScheduledAt = s.ScheduledAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
