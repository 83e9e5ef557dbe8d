package database

import (
	"context"
	"testing"
	"time"

	"restaurant_manager/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeedDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	log := zaptest.NewLogger(t)

	require.NoError(t, SeedData(ctx, store, now, log))
	require.NoError(t, SeedData(ctx, store, now.Add(time.Hour), log))

	tables, err := store.Tables().List(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 6)

	rewards, err := store.Rewards().ListActive(ctx, now)
	require.NoError(t, err)
	assert.Len(t, rewards, 4)

	campaigns, err := store.Campaigns().List(ctx)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)

	program, err := store.Programs().FindActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), program.PointsPer50)
}
