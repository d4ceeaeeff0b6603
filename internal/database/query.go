package database

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Wildcard is the filter value that means "no filter".
const Wildcard = "all"

// Paging limits applied by NewPage.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Table describes a queryable entity table: its column set (which doubles as
// the set of legal filter columns) and its fixed ordering.
type Table struct {
	Name    string
	Columns []string
	OrderBy string
}

func (t *Table) hasColumn(column string) bool {
	return slices.Contains(t.Columns, column)
}

// Filter is an optional equality condition. A nil Value (including a typed
// nil pointer) or the Wildcard string leaves the filter out entirely.
type Filter struct {
	Column string
	Value  any
}

// Page selects a 1-based page of Size rows.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into a usable page.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// Keep Offset from overflowing into a negative OFFSET.
	if maxNumber := math.MaxInt / size; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

// Offset returns (Number-1)*Size.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// SelectQuery is a list query over one table.
type SelectQuery struct {
	Table   *Table
	Filters []Filter
	Page    *Page
}

// Build renders the SELECT statement and its positional arguments.
func (q SelectQuery) Build() (string, []any, error) {
	where, args, err := q.where()
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.Table.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.Table.Name)
	b.WriteString(where)
	if q.Table.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.Table.OrderBy)
	}
	if q.Page != nil {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Page.Size, q.Page.Offset())
	}
	return b.String(), args, nil
}

// BuildCount renders SELECT COUNT(*) with the same WHERE clause as Build and
// no ordering or paging.
func (q SelectQuery) BuildCount() (string, []any, error) {
	where, args, err := q.where()
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + q.Table.Name + where, args, nil
}

func (q SelectQuery) where() (string, []any, error) {
	if q.Table == nil {
		return "", nil, fmt.Errorf("select query has no table")
	}

	var b strings.Builder
	var args []any
	for _, f := range q.Filters {
		if !q.Table.hasColumn(f.Column) {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, q.Table.Name, f.Column)
		}
		value, ok := filterValue(f.Value)
		if !ok {
			continue
		}
		if len(args) == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(f.Column)
		b.WriteString(" = ?")
		args = append(args, value)
	}
	return b.String(), args, nil
}

// filterValue unwraps optional values and reports whether the filter applies.
func filterValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *string:
		if x == nil {
			return nil, false
		}
		return filterValue(*x)
	case string:
		if x == Wildcard {
			return nil, false
		}
		return x, true
	case *bool:
		if x == nil {
			return nil, false
		}
		return *x, true
	case *int:
		if x == nil {
			return nil, false
		}
		return *x, true
	default:
		return v, true
	}
}
