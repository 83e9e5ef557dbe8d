package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardPointArithmetic(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "237.00")

	res, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, AwardAwarded, res.Outcome)
	assert.Equal(t, int64(400), res.Points)

	acc := f.account(t, 1)
	assert.Equal(t, int64(400), acc.Points)
	assert.Equal(t, int64(400), acc.LifetimePoints)
	assert.Equal(t, constants.TIER_BRONZE, acc.Tier)

	earned, err := f.store.Ledger().FindEarnedTransactionForOrder(f.ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, earned.ExpiresAt)
	assert.Equal(t, epoch.Add(180*24*time.Hour), *earned.ExpiresAt)
}

func TestAwardIsIdempotent(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "120.00")

	first, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	require.Equal(t, AwardAwarded, first.Outcome)
	after := f.account(t, 1).Points

	second, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, AwardAlreadyAwarded, second.Outcome)
	assert.Equal(t, after, f.account(t, 1).Points)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_EARNED])
}

func TestAwardConcurrentCallersEarnOnce(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "500.00")

	var wg sync.WaitGroup
	results := make([]AwardResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.loyalty.Award(f.ctx, o.ID, 1)
		}(i)
	}
	wg.Wait()

	awarded := 0
	for _, r := range results {
		if r.Outcome == AwardAwarded {
			awarded++
		} else {
			assert.Equal(t, AwardAlreadyAwarded, r.Outcome)
		}
	}
	assert.Equal(t, 1, awarded)
	assert.Equal(t, int64(1000), f.account(t, 1).Points)
}

// blindLedger bỏ qua bước kiểm tra nhanh để chỉ còn chỉ mục unique bảo vệ.
type blindStore struct{ repository.Store }

func (s blindStore) Ledger() repository.LedgerRepository { return blindLedger{s.Store.Ledger()} }

func (s blindStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error { return fn(blindStore{tx}) })
}

type blindLedger struct{ repository.LedgerRepository }

func (blindLedger) FindEarnedTransactionForOrder(context.Context, uint) (*model.PointTransaction, error) {
	return nil, repository.ErrNotFound
}

func TestAwardUniqueIndexIsTheSafetyNet(t *testing.T) {
	f := newFixtureWith(t, func(s repository.Store) repository.Store { return blindStore{s} })
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "100.00")

	first, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	require.Equal(t, AwardAwarded, first.Outcome)

	second, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, AwardAlreadyAwarded, second.Outcome)
	assert.Equal(t, int64(200), f.account(t, 1).Points)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_EARNED])
}

func TestAwardTierUpgradeBonus(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, 1, 1950, 1950)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "50.00")

	res, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Points)
	assert.Equal(t, int64(200), res.BonusPoints)
	assert.Equal(t, constants.TIER_SILVER, res.Tier)

	acc := f.account(t, 1)
	assert.Equal(t, int64(1950+300), acc.Points)
	assert.Equal(t, int64(2050), acc.LifetimePoints)
	assert.Equal(t, constants.TIER_SILVER, acc.Tier)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_BONUS])

	assert.Eventually(t, func() bool {
		return strings.Contains(strings.Join(f.pub.names(), ","), constants.EVENT_TIER_UPGRADED)
	}, time.Second, 5*time.Millisecond)
}

func TestAwardMultiTierJumpPaysLandingTierOnly(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, 1, 1900, 1900)
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "2550.00")

	res, err := f.loyalty.Award(f.ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5100), res.Points)
	assert.Equal(t, int64(500), res.BonusPoints)

	acc := f.account(t, 1)
	assert.Equal(t, constants.TIER_GOLD, acc.Tier)
	assert.Equal(t, int64(1900+5100+500), acc.Points)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_BONUS])
}

func TestAwardUsesBestCampaignAndProgram(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	require.NoError(t, f.store.Programs().Create(f.ctx, &model.LoyaltyProgram{Name: "Default", PointsPer50: 10, Status: constants.STATUS_ACTIVE}))
	f.campaign(t, "C1", 1.5, now.Add(-time.Hour), now.Add(time.Hour))
	f.campaign(t, "C2", 2.5, now.Add(-time.Hour), now.Add(time.Hour))

	o := f.order(t, 3, nil, constants.ORDER_COMPLETED, "160.00")
	res, err := f.loyalty.Award(f.ctx, o.ID, 3)
	require.NoError(t, err)
	// floor(160/50)=3 -> 30 -> floor(30*2.5)=75
	assert.Equal(t, int64(75), res.Points)
}

func TestAwardSkipped(t *testing.T) {
	f := newFixture(t)
	pending := f.order(t, 1, nil, constants.ORDER_PROCESSING, "300.00")
	small := f.order(t, 1, nil, constants.ORDER_COMPLETED, "49.99")
	other := f.order(t, 2, nil, constants.ORDER_COMPLETED, "300.00")

	for _, tc := range []struct {
		name       string
		orderID    uint
		customerID uint
	}{
		{"not completed", pending.ID, 1},
		{"below threshold", small.ID, 1},
		{"wrong customer", other.ID, 1},
		{"no customer", other.ID, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.loyalty.Award(f.ctx, tc.orderID, tc.customerID)
			require.NoError(t, err)
			assert.Equal(t, AwardSkipped, res.Outcome)
			assert.NotEmpty(t, res.Reason)
		})
	}
	assert.Empty(t, f.store.LedgerFor(1))

	_, err := f.loyalty.Award(f.ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

type brokenLedgerStore struct{ repository.Store }

func (s brokenLedgerStore) Ledger() repository.LedgerRepository {
	return brokenLedger{s.Store.Ledger()}
}

func (s brokenLedgerStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error { return fn(brokenLedgerStore{tx}) })
}

type brokenLedger struct{ repository.LedgerRepository }

func (brokenLedger) Append(context.Context, *model.PointTransaction) error {
	return errors.New("disk full")
}

func TestAwardFailureIsExplicit(t *testing.T) {
	f := newFixtureWith(t, func(s repository.Store) repository.Store { return brokenLedgerStore{s} })
	o := f.order(t, 1, nil, constants.ORDER_COMPLETED, "100.00")

	res, err := f.loyalty.Award(f.ctx, o.ID, 1)
	assert.ErrorIs(t, err, ErrAwardFailure)
	assert.Equal(t, AwardFailed, res.Outcome)
	assert.Contains(t, res.Reason, "disk full")

	// transaction rollback: tài khoản tạo dở cũng không còn
	_, err = f.store.Ledger().FindAccount(f.ctx, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPreviewPoints(t *testing.T) {
	f := newFixture(t)
	got, err := f.loyalty.PreviewPoints(f.ctx, decimal.RequireFromString("237.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(400), got)

	_, err = f.loyalty.PreviewPoints(f.ctx, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummaryAndTierProgress(t *testing.T) {
	f := newFixture(t)

	empty, err := f.loyalty.Summary(f.ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, constants.TIER_BRONZE, empty.Account.Tier)
	assert.Zero(t, empty.Account.Points)
	assert.Empty(t, empty.Transactions)

	f.seedAccount(t, 5, 2500, 4200)
	progress, err := f.loyalty.TierProgress(f.ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, constants.TIER_SILVER, progress.Tier)
	assert.Equal(t, constants.TIER_GOLD, progress.NextTier)
	assert.Equal(t, int64(800), progress.PointsToNextTier)
	assert.Equal(t, 10, progress.PointBonus)
	assert.Equal(t, "Earned at 2,000 lifetime points", progress.Description)
	assert.Contains(t, progress.Benefits, "Priority customer support")
	assert.Contains(t, progress.NextTierBenefits, "VIP event invitations")

	summary, err := f.loyalty.Summary(f.ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), summary.Account.Points)
	assert.Equal(t, int64(4200), summary.Account.LifetimePoints)
}

func TestRedeemReward(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, 1, 600, 600)
	coffee := model.RewardItem{Name: "Free coffee", PointsRequired: 500, Status: constants.STATUS_ACTIVE}
	dinner := model.RewardItem{Name: "Dinner for two", PointsRequired: 5000, Status: constants.STATUS_ACTIVE}
	past := epoch.Add(-time.Hour)
	stale := model.RewardItem{Name: "Old promo", PointsRequired: 10, Status: constants.STATUS_ACTIVE, ExpiryDate: &past}
	for _, r := range []*model.RewardItem{&coffee, &dinner, &stale} {
		require.NoError(t, f.store.Rewards().Create(f.ctx, r))
	}

	views, err := f.loyalty.ListRewards(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].CanRedeem)
	assert.False(t, views[1].CanRedeem)

	_, err = f.loyalty.RedeemReward(f.ctx, 1, dinner.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	_, err = f.loyalty.RedeemReward(f.ctx, 1, stale.ID)
	assert.ErrorIs(t, err, ErrRewardUnavailable)
	_, err = f.loyalty.RedeemReward(f.ctx, 1, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.loyalty.RedeemReward(f.ctx, 77, coffee.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(600), f.account(t, 1).Points)

	redemption, err := f.loyalty.RedeemReward(f.ctx, 1, coffee.ID)
	require.NoError(t, err)
	assert.Len(t, redemption.RedemptionCode, 8)
	assert.Equal(t, strings.ToUpper(redemption.RedemptionCode), redemption.RedemptionCode)
	assert.Equal(t, int64(100), f.account(t, 1).Points)
	assert.Equal(t, int64(600), f.account(t, 1).LifetimePoints)

	// số dư không bao giờ âm
	_, err = f.loyalty.RedeemReward(f.ctx, 1, coffee.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(100), f.account(t, 1).Points)

	history, err := f.loyalty.RedemptionHistory(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Free coffee", history[0].Reward.Name)
	assert.Equal(t, 1, f.kinds(1)[constants.TX_REDEEMED])
}
