package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/notify"
	"restaurant_manager/repository"
	"restaurant_manager/repository/memstore"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

type fixture struct {
	ctx       context.Context
	store     *memstore.Store
	clock     *clockwork.FakeClock
	pub       *recorder
	campaigns *CampaignSelector
	loyalty   *LoyaltyService
	sweeper   *PointExpirySweeper
	tables    *TableReconciler
	orders    *OrderLifecycle
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith cho phép bọc store mà LoyaltyService dùng, để giả lập lỗi cộng điểm.
func newFixtureWith(t *testing.T, wrapLoyalty func(repository.Store) repository.Store) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	f := &fixture{
		ctx:   context.Background(),
		store: memstore.New(),
		clock: clockwork.NewFakeClockAt(epoch),
		pub:   &recorder{},
	}
	var loyaltyStore repository.Store = f.store
	if wrapLoyalty != nil {
		loyaltyStore = wrapLoyalty(f.store)
	}
	f.campaigns = NewCampaignSelector(f.store, f.clock, log)
	f.loyalty = NewLoyaltyService(loyaltyStore, f.campaigns, f.clock, log, f.pub)
	f.sweeper = NewPointExpirySweeper(f.store, log)
	f.tables = NewTableReconciler(f.store, log, f.pub)
	f.orders = NewOrderLifecycle(f.store, f.loyalty, f.tables, f.clock, log, f.pub)
	return f
}

func (f *fixture) order(t *testing.T, customerID uint, tableID *uint, status, total string) model.Order {
	t.Helper()
	o := model.Order{
		CustomerID:  customerID,
		TableID:     tableID,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
	}
	if status == constants.ORDER_COMPLETED {
		at := f.clock.Now()
		o.CompletedAt = &at
	}
	require.NoError(t, f.store.Orders().Create(f.ctx, &o))
	return o
}

func (f *fixture) table(t *testing.T, number, status string) model.Table {
	t.Helper()
	tb := model.Table{TableNumber: number, Status: status, Capacity: 4}
	require.NoError(t, f.store.Tables().Create(f.ctx, &tb))
	return tb
}

func (f *fixture) campaign(t *testing.T, code string, multiplier float64, start, end time.Time) {
	t.Helper()
	require.NoError(t, f.store.Campaigns().Create(f.ctx, &model.PromotionalCampaign{
		Code:            code,
		Name:            code,
		BonusMultiplier: multiplier,
		StartDate:       start,
		EndDate:         end,
		Status:          constants.STATUS_ACTIVE,
	}))
}

func (f *fixture) seedAccount(t *testing.T, customerID uint, points, lifetime int64) {
	t.Helper()
	require.NoError(t, f.store.Ledger().SaveAccount(f.ctx, &model.LoyaltyAccount{
		CustomerID:     customerID,
		Points:         points,
		LifetimePoints: lifetime,
		Tier:           TierFor(lifetime),
		LastActivity:   f.clock.Now(),
	}))
}

func (f *fixture) account(t *testing.T, customerID uint) model.LoyaltyAccount {
	t.Helper()
	acc, err := f.store.Ledger().FindAccount(f.ctx, customerID)
	require.NoError(t, err)
	return *acc
}

func (f *fixture) kinds(customerID uint) map[string]int {
	out := map[string]int{}
	for _, tx := range f.store.LedgerFor(customerID) {
		out[tx.Kind]++
	}
	return out
}
