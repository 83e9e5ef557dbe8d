package service

import (
	"testing"

	"restaurant_manager/constants"
	"restaurant_manager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileAll(t *testing.T) {
	f := newFixture(t)
	busy := f.table(t, "T1", constants.TABLE_AVAILABLE)
	stale := f.table(t, "T2", constants.TABLE_OCCUPIED)
	reserved := f.table(t, "T3", constants.TABLE_RESERVED)
	fine := f.table(t, "T4", constants.TABLE_OCCUPIED)

	f.order(t, 1, utils.Ptr(busy.ID), constants.ORDER_NEW, "10.00")
	f.order(t, 1, utils.Ptr(stale.ID), constants.ORDER_COMPLETED, "10.00")
	f.order(t, 1, utils.Ptr(reserved.ID), constants.ORDER_PROCESSING, "10.00")
	f.order(t, 1, utils.Ptr(fine.ID), constants.ORDER_PROCESSING, "10.00")

	dry, err := f.tables.ReconcileAll(f.ctx, true)
	require.NoError(t, err)
	require.Len(t, dry.Changes, 2)
	assert.Equal(t, busy.ID, dry.Changes[0].TableID)
	assert.Equal(t, constants.TABLE_OCCUPIED, dry.Changes[0].Expected)
	assert.False(t, dry.Changes[0].Fixed)
	assert.Equal(t, stale.ID, dry.Changes[1].TableID)
	assert.Equal(t, constants.TABLE_AVAILABLE, dry.Changes[1].Expected)

	// dry run không ghi gì
	got, err := f.store.Tables().FindByID(f.ctx, busy.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TABLE_AVAILABLE, got.Status)

	report, err := f.tables.ReconcileAll(f.ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Changes, 2)
	assert.True(t, report.Changes[0].Fixed)
	assert.Equal(t, int64(2), report.Occupied)

	want := map[uint]string{
		busy.ID:     constants.TABLE_OCCUPIED,
		stale.ID:    constants.TABLE_AVAILABLE,
		reserved.ID: constants.TABLE_RESERVED,
		fine.ID:     constants.TABLE_OCCUPIED,
	}
	tables, err := f.store.Tables().List(f.ctx)
	require.NoError(t, err)
	for _, tb := range tables {
		assert.Equal(t, want[tb.ID], tb.Status, "table %s", tb.TableNumber)
	}

	again, err := f.tables.ReconcileAll(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, again.Changes)
}

func TestReconcileOne(t *testing.T) {
	f := newFixture(t)
	tb := f.table(t, "T1", constants.TABLE_AVAILABLE)

	change, err := f.tables.ReconcileOne(f.ctx, tb.ID)
	require.NoError(t, err)
	assert.Nil(t, change)

	f.order(t, 1, utils.Ptr(tb.ID), constants.ORDER_NEW, "10.00")
	change, err = f.tables.ReconcileOne(f.ctx, tb.ID)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, constants.TABLE_AVAILABLE, change.Previous)
	assert.Equal(t, constants.TABLE_OCCUPIED, change.Expected)
	assert.True(t, change.Fixed)

	_, err = f.tables.ReconcileOne(f.ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
