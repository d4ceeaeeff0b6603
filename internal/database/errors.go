package database

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConflict is returned when an insert hits a primary key or unique
	// constraint, e.g. two ids minted in the same millisecond.
	ErrConflict = errors.New("conflict")
	// ErrInternal covers every other storage engine failure.
	ErrInternal = errors.New("storage failure")
	// ErrUnknownColumn is returned at composition time for a filter on a
	// column the table does not declare.
	ErrUnknownColumn = errors.New("unknown filter column")
)

// classify wraps a driver error with ErrConflict or ErrInternal.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
