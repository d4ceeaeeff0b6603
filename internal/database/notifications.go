package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultNotificationType is stored when a notification has no type.
const DefaultNotificationType = "info"

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   *string   `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationFilter holds the optional equality filters for ListNotifications.
type NotificationFilter struct {
	UserID *string
	Type   *string
	IsRead *bool
}

// CreateNotification inserts a notification and returns its new id.
func (db *DB) CreateNotification(ctx context.Context, n *Notification) (string, error) {
	n.ID, n.CreatedAt = db.ids.Next(PrefixNotification)
	n.Type = stringOr(n.Type, DefaultNotificationType)

	_, err := db.exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	if err != nil {
		return "", classify("create notification", err)
	}
	return n.ID, nil
}

// ListNotifications returns notifications matching f, newest first.
func (db *DB) ListNotifications(ctx context.Context, f NotificationFilter) ([]*Notification, error) {
	rows, err := db.selectRows(ctx, SelectQuery{
		Table: notificationsTable,
		Filters: []Filter{
			{Column: "user_id", Value: f.UserID},
			{Column: "type", Value: f.Type},
			{Column: "is_read", Value: f.IsRead},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*Notification, 0)
	for rows.Next() {
		n := &Notification{}
		var message, notificationType sql.NullString
		var isRead sql.NullBool
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &message, &notificationType, &isRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w: %w", ErrInternal, err)
		}
		n.Message = nullStringToPtr(message)
		n.Type = nullStringValue(notificationType)
		n.IsRead = isRead.Bool
		n.CreatedAt = n.CreatedAt.UTC()
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list notifications", err)
	}
	return notifications, nil
}
