package helper

import (
	"context"
	"testing"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/repository/memstore"
	"restaurant_manager/service"
	"restaurant_manager/utils"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("00:10")
	require.NoError(t, err)
	assert.Equal(t, uint(0), h)
	assert.Equal(t, uint(10), m)

	_, _, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestStartSchedulers(t *testing.T) {
	log := zaptest.NewLogger(t)
	store := memstore.New()
	cairo := time.FixedZone("EET", 2*3600)

	s, err := StartSchedulers(ScheduleConfig{SweepAt: "00:10", ReconcileCron: "*/5 * * * *", Location: cairo},
		service.NewPointExpirySweeper(store, log), service.NewTableReconciler(store, log, nil), clockwork.NewRealClock(), log)
	require.NoError(t, err)
	s.Stop()

	_, err = StartSchedulers(ScheduleConfig{SweepAt: "00:10", ReconcileCron: "not a cron"},
		service.NewPointExpirySweeper(store, log), service.NewTableReconciler(store, log, nil), clockwork.NewRealClock(), log)
	assert.Error(t, err)
}

func TestRunJobs(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	store := memstore.New()

	table := model.Table{TableNumber: "T1", Status: constants.TABLE_AVAILABLE}
	require.NoError(t, store.Tables().Create(ctx, &table))
	require.NoError(t, store.Orders().Create(ctx, &model.Order{
		CustomerID: 1, TableID: utils.Ptr(table.ID), Status: constants.ORDER_NEW, TotalAmount: decimal.NewFromInt(20),
	}))

	RunReconcile(service.NewTableReconciler(store, log, nil), log)
	got, err := store.Tables().FindByID(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.TABLE_OCCUPIED, got.Status)

	RunExpirySweep(service.NewPointExpirySweeper(store, log), clockwork.NewFakeClock(), log)
}
