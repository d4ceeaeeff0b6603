package database

import (
	"context"
	"time"
)

// FeedItemTypeProject marks feed entries derived from projects.
const FeedItemTypeProject = "project"

// FeedItem is one entry of the activity feed.
type FeedItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFeed returns one page of feed items, newest first, together with the
// total number of items across all pages.
func (db *DB) ListFeed(ctx context.Context, page Page) ([]*FeedItem, int, error) {
	q := SelectQuery{Table: projectsTable, Page: &page}

	total, err := db.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.selectRows(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*FeedItem, 0, page.Size)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &FeedItem{
			ID:          p.ID,
			Type:        FeedItemTypeProject,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify("list feed", err)
	}
	return items, total, nil
}
