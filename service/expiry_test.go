package service

import (
	"testing"
	"time"

	"restaurant_manager/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepBoundary(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "100.00")
	_, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	expiry := epoch.Add(PointsValidity)

	total, err := f.sweeper.Sweep(f.ctx, expiry.Add(-time.Second))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, int64(200), f.account(t, 1).Points)

	total, err = f.sweeper.Sweep(f.ctx, expiry)
	require.NoError(t, err)
	assert.Equal(t, int64(200), total)

	acc := f.account(t, 1)
	assert.Zero(t, acc.Points)
	assert.Equal(t, int64(200), acc.LifetimePoints)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_EXPIRED])

	// chạy lại không huỷ thêm
	total, err = f.sweeper.Sweep(f.ctx, expiry.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_EXPIRED])
}

func TestSweepSkipsWhenBalanceTooLow(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "250.00")
	_, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)

	acc := f.account(t, 1)
	acc.Points = 100
	require.NoError(t, f.store.Ledger().SaveAccount(f.ctx, &acc))

	total, err := f.sweeper.Sweep(f.ctx, epoch.Add(PointsValidity))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, int64(100), f.account(t, 1).Points)

	earned, err := f.store.Ledger().FindEarnedTransactionForOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, earned.ExpiredAt)
}

func TestSweepSeveralCustomers(t *testing.T) {
	f := newFixture(t)
	early := f.order(t, 1, nil, constants.ORDER_COMPLETED, "50.00")
	_, err := f.loyalty.Award(f.ctx, early.ID, 1)
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	late := f.order(t, 2, nil, constants.ORDER_COMPLETED, "150.00")
	_, err = f.loyalty.Award(f.ctx, late.ID, 2)
	require.NoError(t, err)

	total, err := f.sweeper.Sweep(f.ctx, epoch.Add(PointsValidity+time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)

	total, err = f.sweeper.Sweep(f.ctx, epoch.Add(PointsValidity+72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(300), total)
	assert.Zero(t, f.account(t, 2).Points)
}
