package database

import (
	"context"
	"database/sql"
	"fmt"
)

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// selectRows composes q and runs it. Composition errors are returned as-is
// so an unknown column never reaches the store.
func (db *DB) selectRows(ctx context.Context, q SelectQuery) (*sql.Rows, error) {
	stmt, args, err := q.Build()
	if err != nil {
		return nil, err
	}
	rows, err := db.query(ctx, stmt, args...)
	if err != nil {
		return nil, classify(fmt.Sprintf("list %s", q.Table.Name), err)
	}
	return rows, nil
}

// count runs the COUNT(*) form of q.
func (db *DB) count(ctx context.Context, q SelectQuery) (int, error) {
	stmt, args, err := q.BuildCount()
	if err != nil {
		return 0, err
	}
	var total int
	if err := db.queryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, classify(fmt.Sprintf("count %s", q.Table.Name), err)
	}
	return total, nil
}
