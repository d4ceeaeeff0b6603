package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jim-devENG/ispora-engine/internal/database"
)

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()

	db, err := database.New(database.MemoryPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	var mu sync.Mutex
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	})

	userID, err := seedDemoData(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	counts, err := db.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"users":         1,
		"projects":      1,
		"sessions":      1,
		"tasks":         1,
		"notifications": 2,
	}, counts)

	again, err := seedDemoData(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, again, "second seed is a no-op")

	counts, err = db.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["users"])
	assert.Equal(t, 2, counts["notifications"])
}
