package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DefaultUserRole is stored when a user is created without a role.
const DefaultUserRole = "user"

// User is a platform member. Email is unique across all users.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFilter holds the optional equality filters for ListUsers.
type UserFilter struct {
	Role  *string
	Email *string
}

// CreateUser inserts a user and returns its new id. A duplicate email is
// reported as ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *User) (string, error) {
	u.ID, u.CreatedAt = db.ids.Next(PrefixUser)
	u.Role = stringOr(u.Role, DefaultUserRole)

	_, err := db.exec(ctx, `
		INSERT INTO users (id, email, name, avatar_url, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.AvatarURL, u.Role, u.CreatedAt)
	if err != nil {
		return "", classify("create user", err)
	}
	return u.ID, nil
}

// ListUsers returns users matching f, newest first.
func (db *DB) ListUsers(ctx context.Context, f UserFilter) ([]*User, error) {
	rows, err := db.selectRows(ctx, SelectQuery{
		Table: usersTable,
		Filters: []Filter{
			{Column: "role", Value: f.Role},
			{Column: "email", Value: f.Email},
		},
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u := &User{}
		var avatarURL, role sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &avatarURL, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w: %w", ErrInternal, err)
		}
		u.AvatarURL = nullStringToPtr(avatarURL)
		u.Role = nullStringValue(role)
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}
