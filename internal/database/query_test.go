package database

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestSelectQueryBuild(t *testing.T) {
	var nilStatus *string

	tests := []struct {
		name     string
		query    SelectQuery
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no filters",
			query:   SelectQuery{Table: projectsTable},
			wantSQL: "SELECT id, title, description, status, creator_id, created_at FROM projects ORDER BY created_at DESC, id DESC",
		},
		{
			name: "single filter",
			query: SelectQuery{Table: projectsTable, Filters: []Filter{
				{Column: "status", Value: strPtr("active")},
			}},
			wantSQL:  "SELECT id, title, description, status, creator_id, created_at FROM projects WHERE status = ? ORDER BY created_at DESC, id DESC",
			wantArgs: []any{"active"},
		},
		{
			name: "filters keep declaration order",
			query: SelectQuery{Table: sessionsTable, Filters: []Filter{
				{Column: "project_id", Value: strPtr("proj_1")},
				{Column: "status", Value: "upcoming"},
			}},
			wantSQL:  "SELECT " + joinColumns(sessionsTable) + " FROM sessions WHERE project_id = ? AND status = ? ORDER BY scheduled_at DESC, id DESC",
			wantArgs: []any{"proj_1", "upcoming"},
		},
		{
			name: "wildcard and unset values are skipped",
			query: SelectQuery{Table: sessionsTable, Filters: []Filter{
				{Column: "project_id", Value: nilStatus},
				{Column: "status", Value: strPtr(Wildcard)},
			}},
			wantSQL: "SELECT " + joinColumns(sessionsTable) + " FROM sessions ORDER BY scheduled_at DESC, id DESC",
		},
		{
			name: "skipped filter does not leave a dangling AND",
			query: SelectQuery{Table: tasksTable, Filters: []Filter{
				{Column: "project_id", Value: nil},
				{Column: "status", Value: strPtr("done")},
				{Column: "assignee_id", Value: strPtr("user_1")},
			}},
			wantSQL:  "SELECT " + joinColumns(tasksTable) + " FROM tasks WHERE status = ? AND assignee_id = ? ORDER BY created_at DESC, id DESC",
			wantArgs: []any{"done", "user_1"},
		},
		{
			name:     "paging appends limit and offset",
			query:    SelectQuery{Table: projectsTable, Page: &Page{Number: 3, Size: 20}},
			wantSQL:  "SELECT id, title, description, status, creator_id, created_at FROM projects ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
			wantArgs: []any{20, 40},
		},
		{
			name: "bool filter",
			query: SelectQuery{Table: notificationsTable, Filters: []Filter{
				{Column: "is_read", Value: new(bool)},
			}},
			wantSQL:  "SELECT id, user_id, title, message, type, is_read, created_at FROM notifications WHERE is_read = ? ORDER BY created_at DESC, id DESC",
			wantArgs: []any{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs, err := tt.query.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Errorf("Build() sql\n got: %s\nwant: %s", gotSQL, tt.wantSQL)
			}
			if len(gotArgs) != len(tt.wantArgs) || (len(gotArgs) > 0 && !reflect.DeepEqual(gotArgs, tt.wantArgs)) {
				t.Errorf("Build() args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestSelectQueryBuild_UnknownColumn(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"with value", "x"},
		{"without value", nil},
		{"wildcard", Wildcard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := SelectQuery{Table: projectsTable, Filters: []Filter{{Column: "title; DROP TABLE projects", Value: tt.value}}}
			_, _, err := q.Build()
			if !errors.Is(err, ErrUnknownColumn) {
				t.Fatalf("Build() error = %v, want ErrUnknownColumn", err)
			}
			_, _, err = q.BuildCount()
			if !errors.Is(err, ErrUnknownColumn) {
				t.Fatalf("BuildCount() error = %v, want ErrUnknownColumn", err)
			}
		})
	}
}

func TestSelectQueryBuildCount(t *testing.T) {
	q := SelectQuery{
		Table:   sessionsTable,
		Filters: []Filter{{Column: "status", Value: "completed"}},
		Page:    &Page{Number: 2, Size: 10},
	}

	gotSQL, gotArgs, err := q.BuildCount()
	if err != nil {
		t.Fatalf("BuildCount() error = %v", err)
	}
	if want := "SELECT COUNT(*) FROM sessions WHERE status = ?"; gotSQL != want {
		t.Errorf("BuildCount() sql = %q, want %q", gotSQL, want)
	}
	if !reflect.DeepEqual(gotArgs, []any{"completed"}) {
		t.Errorf("BuildCount() args = %v", gotArgs)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		number, size         int
		wantNumber, wantSize int
		wantOffset           int
	}{
		{1, 50, 1, 50, 0},
		{2, 50, 2, 50, 50},
		{0, 10, 1, 10, 0},
		{-4, 10, 1, 10, 0},
		{3, 0, 3, DefaultPageSize, 100},
		{1, 500, 1, MaxPageSize, 0},
	}

	for _, tt := range tests {
		p := NewPage(tt.number, tt.size)
		if p.Number != tt.wantNumber || p.Size != tt.wantSize {
			t.Errorf("NewPage(%d, %d) = %+v, want {%d %d}", tt.number, tt.size, p, tt.wantNumber, tt.wantSize)
		}
		if p.Offset() != tt.wantOffset {
			t.Errorf("NewPage(%d, %d).Offset() = %d, want %d", tt.number, tt.size, p.Offset(), tt.wantOffset)
		}
	}
}

func TestNewPage_HugeNumberKeepsOffsetPositive(t *testing.T) {
	for _, size := range []int{1, 7, DefaultPageSize, MaxPageSize} {
		p := NewPage(math.MaxInt, size)
		if p.Offset() < 0 {
			t.Errorf("NewPage(MaxInt, %d).Offset() = %d, want non-negative", size, p.Offset())
		}
		if p.Number < 2 {
			t.Errorf("NewPage(MaxInt, %d).Number = %d, want a page past the first", size, p.Number)
		}
	}
}

func TestSplitSQLStatements(t *testing.T) {
	got := splitSQLStatements(`
-- leading comment
CREATE TABLE a (id TEXT);

CREATE TABLE b (
	id TEXT
);
CREATE INDEX idx ON b(id)
`)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
	if got[2] != "CREATE INDEX idx ON b(id)" {
		t.Errorf("unexpected trailing statement %q", got[2])
	}
}

func joinColumns(t *Table) string {
	out := ""
	for i, c := range t.Columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
