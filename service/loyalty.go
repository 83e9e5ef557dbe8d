package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/notify"
	"restaurant_manager/repository"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultPointsPer50 int64 = 100
	PointsValidity           = 180 * 24 * time.Hour
	summaryTxLimit           = 20
)

var (
	spendUnit = decimal.NewFromInt(50)
	tracer    = otel.Tracer("restaurant_manager/service")
)

type AwardOutcome string

const (
	AwardAwarded        AwardOutcome = "awarded"
	AwardAlreadyAwarded AwardOutcome = "already_awarded"
	AwardSkipped        AwardOutcome = "skipped"
	AwardFailed         AwardOutcome = "failed"
)

type AwardResult struct {
	Outcome     AwardOutcome `json:"outcome"`
	OrderID     uint         `json:"orderId"`
	CustomerID  uint         `json:"customerId"`
	Points      int64        `json:"points"`
	BonusPoints int64        `json:"bonusPoints,omitempty"`
	Tier        string       `json:"tier,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

type TierProgress struct {
	CustomerID       uint     `json:"customerId"`
	Tier             string   `json:"tier"`
	LifetimePoints   int64    `json:"lifetimePoints"`
	NextTier         string   `json:"nextTier,omitempty"`
	PointsToNextTier int64    `json:"pointsToNextTier"`
	PointBonus       int      `json:"pointBonus"`
	Description      string   `json:"description"`
	Benefits         []string `json:"benefits"`
	NextTierBenefits []string `json:"nextTierBenefits,omitempty"`
}

type LoyaltyService struct {
	store     repository.Store
	campaigns *CampaignSelector
	clock     clockwork.Clock
	log       *zap.Logger
	pub       notify.Publisher
}

func NewLoyaltyService(store repository.Store, campaigns *CampaignSelector, clock clockwork.Clock, log *zap.Logger, pub notify.Publisher) *LoyaltyService {
	return &LoyaltyService{store: store, campaigns: campaigns, clock: clock, log: log, pub: pub}
}

// Award cộng điểm cho một đơn hàng đã hoàn thành, gọi lại nhiều lần vẫn chỉ cộng một lần.
// Lỗi trả về là ErrNotFound (không có đơn) hoặc ErrAwardFailure (kèm Outcome = AwardFailed).
func (s *LoyaltyService) Award(ctx context.Context, orderID, customerID uint) (AwardResult, error) {
	ctx, span := tracer.Start(ctx, "loyalty.Award")
	defer span.End()
	span.SetAttributes(attribute.Int64("order_id", int64(orderID)), attribute.Int64("customer_id", int64(customerID)))

	res := AwardResult{OrderID: orderID, CustomerID: customerID}

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return res, ErrNotFound
		}
		return s.failed(res, 0, err)
	}
	switch {
	case order.Status != constants.ORDER_COMPLETED:
		return skipped(res, "order is not completed"), nil
	case customerID == 0:
		return skipped(res, "order has no customer"), nil
	case order.CustomerID != customerID:
		return skipped(res, "customer does not own order"), nil
	}

	// kiểm tra nhanh, chỉ mục unique mới là chốt chặn thật
	if _, err := s.store.Ledger().FindEarnedTransactionForOrder(ctx, orderID); err == nil {
		res.Outcome = AwardAlreadyAwarded
		return res, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return s.failed(res, 0, err)
	}

	now := s.clock.Now()
	base, err := s.basePoints(ctx, order.TotalAmount)
	if err != nil {
		return s.failed(res, 0, err)
	}
	multiplier, err := s.campaigns.BestMultiplier(ctx, customerID, now)
	if err != nil {
		return s.failed(res, base, err)
	}
	points := decimal.NewFromInt(base).Mul(decimal.NewFromFloat(multiplier)).Floor().IntPart()
	if points <= 0 {
		return skipped(res, "order total below earning threshold"), nil
	}

	var upgraded bool
	var lifetime int64
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		account, err := tx.Ledger().GetOrCreateAccountForUpdate(ctx, customerID, now)
		if err != nil {
			return err
		}
		expiresAt := now.Add(PointsValidity)
		earned := &model.PointTransaction{
			CustomerID:   customerID,
			OrderID:      &orderID,
			PointsEarned: points,
			Kind:         constants.TX_EARNED,
			Description:  fmt.Sprintf("Points earned from order #%d", orderID),
			ExpiresAt:    &expiresAt,
		}
		if err := tx.Ledger().Append(ctx, earned); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrStorageConflict
			}
			return err
		}

		account.Points += points
		account.LifetimePoints += points
		account.LastActivity = now

		// chỉ trả thưởng của hạng cuối cùng, kể cả khi vượt nhiều ngưỡng một lúc
		newTier := TierFor(account.LifetimePoints)
		if newTier != account.Tier {
			previous := account.Tier
			account.Tier = newTier
			upgraded = true
			if bonus := UpgradeBonus(newTier); bonus > 0 {
				if err := tx.Ledger().Append(ctx, &model.PointTransaction{
					CustomerID:   customerID,
					PointsEarned: bonus,
					Kind:         constants.TX_BONUS,
					Description:  fmt.Sprintf("Tier upgrade bonus: %s -> %s", previous, newTier),
				}); err != nil {
					return err
				}
				account.Points += bonus
				res.BonusPoints = bonus
			}
		}
		res.Tier = account.Tier
		lifetime = account.LifetimePoints
		return tx.Ledger().SaveAccount(ctx, account)
	})
	if err != nil {
		if errors.Is(err, ErrStorageConflict) {
			s.log.Info("award lost race on unique index", zap.Uint("order_id", orderID))
			return AwardResult{Outcome: AwardAlreadyAwarded, OrderID: orderID, CustomerID: customerID}, nil
		}
		res.BonusPoints, res.Tier = 0, ""
		return s.failed(res, points, err)
	}

	res.Outcome = AwardAwarded
	res.Points = points
	s.log.Info("points awarded",
		zap.Uint("order_id", orderID),
		zap.Uint("customer_id", customerID),
		zap.Int64("points", points),
		zap.Int64("bonus_points", res.BonusPoints),
		zap.Float64("multiplier", multiplier),
	)
	notify.Dispatch(s.log, s.pub, notify.Event{Name: constants.EVENT_POINTS_AWARDED, At: now, Payload: map[string]any{
		"order_id":     orderID,
		"customer_id":  customerID,
		"points":       points,
		"bonus_points": res.BonusPoints,
		"tier":         res.Tier,
	}})
	if upgraded {
		notify.Dispatch(s.log, s.pub, notify.Event{Name: constants.EVENT_TIER_UPGRADED, At: now, Payload: map[string]any{
			"customer_id":     customerID,
			"tier":            res.Tier,
			"bonus_points":    res.BonusPoints,
			"lifetime_points": lifetime,
		}})
	}
	return res, nil
}

func skipped(res AwardResult, reason string) AwardResult {
	res.Outcome = AwardSkipped
	res.Reason = reason
	return res
}

// failed ghi log đủ thông tin để cộng điểm lại bằng tay
func (s *LoyaltyService) failed(res AwardResult, attempted int64, err error) (AwardResult, error) {
	s.log.Error("loyalty award failed",
		zap.Uint("order_id", res.OrderID),
		zap.Uint("customer_id", res.CustomerID),
		zap.Int64("attempted_points", attempted),
		zap.Error(err),
	)
	res.Outcome = AwardFailed
	res.Points = 0
	res.Reason = err.Error()
	return res, fmt.Errorf("%w: %v", ErrAwardFailure, err)
}

func (s *LoyaltyService) pointsPer50(ctx context.Context) (int64, error) {
	program, err := s.store.Programs().FindActive(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultPointsPer50, nil
	}
	if err != nil {
		return 0, err
	}
	return program.PointsPer50, nil
}

func (s *LoyaltyService) basePoints(ctx context.Context, amount decimal.Decimal) (int64, error) {
	per50, err := s.pointsPer50(ctx)
	if err != nil {
		return 0, err
	}
	if amount.IsNegative() {
		return 0, nil
	}
	return amount.Div(spendUnit).Floor().IntPart() * per50, nil
}

// PreviewPoints tính điểm cơ bản cho một số tiền, không tính chiến dịch.
func (s *LoyaltyService) PreviewPoints(ctx context.Context, amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %w", ErrInvalidInput)
	}
	return s.basePoints(ctx, amount)
}

func (s *LoyaltyService) account(ctx context.Context, customerID uint) (model.LoyaltyAccountResponse, error) {
	var resp model.LoyaltyAccountResponse
	account, err := s.store.Ledger().FindAccount(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.LoyaltyAccountResponse{CustomerID: customerID, Tier: constants.TIER_BRONZE}, nil
	}
	if err != nil {
		return resp, err
	}
	if err := copier.Copy(&resp, account); err != nil {
		return resp, err
	}
	return resp, nil
}

func (s *LoyaltyService) Summary(ctx context.Context, customerID uint) (*model.LoyaltySummary, error) {
	account, err := s.account(ctx, customerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.Ledger().ListForCustomer(ctx, customerID, summaryTxLimit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.PointTransaction{}
	}
	return &model.LoyaltySummary{Account: account, Transactions: txs}, nil
}

func (s *LoyaltyService) TierProgress(ctx context.Context, customerID uint) (*TierProgress, error) {
	account, err := s.account(ctx, customerID)
	if err != nil {
		return nil, err
	}
	tier := TierFor(account.LifetimePoints)
	info := TierBenefits(tier)
	progress := &TierProgress{
		CustomerID:     customerID,
		Tier:           tier,
		LifetimePoints: account.LifetimePoints,
		PointBonus:     info.PointBonus,
		Description:    info.Description,
		Benefits:       info.Benefits,
	}
	if next, threshold, ok := NextTier(tier); ok {
		progress.NextTier = next
		progress.PointsToNextTier = threshold - account.LifetimePoints
		progress.NextTierBenefits = TierBenefits(next).Benefits
	}
	return progress, nil
}

// RedeemReward đổi điểm lấy quà; số dư không bao giờ âm.
func (s *LoyaltyService) RedeemReward(ctx context.Context, customerID, rewardID uint) (*model.RewardRedemption, error) {
	ctx, span := tracer.Start(ctx, "loyalty.RedeemReward")
	defer span.End()

	now := s.clock.Now()
	var redemption *model.RewardRedemption
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		reward, err := tx.Rewards().FindByID(ctx, rewardID)
		if err != nil {
			return notFound(err)
		}
		if reward.Status != constants.STATUS_ACTIVE || (reward.ExpiryDate != nil && reward.ExpiryDate.Before(now)) {
			return ErrRewardUnavailable
		}
		account, err := tx.Ledger().FindAccountForUpdate(ctx, customerID)
		if err != nil {
			return notFound(err)
		}
		if account.Points < reward.PointsRequired {
			return ErrInsufficientPoints
		}

		redemption = &model.RewardRedemption{
			CustomerID:     customerID,
			RewardID:       reward.ID,
			PointsUsed:     reward.PointsRequired,
			Status:         constants.REDEMPTION_COMPLETED,
			RedemptionCode: strings.ToUpper(uuid.NewString()[:8]),
		}
		if err := tx.Rewards().CreateRedemption(ctx, redemption); err != nil {
			return err
		}
		if err := tx.Ledger().Append(ctx, &model.PointTransaction{
			CustomerID:     customerID,
			PointsRedeemed: reward.PointsRequired,
			Kind:           constants.TX_REDEEMED,
			Description:    "Redeemed: " + reward.Name,
		}); err != nil {
			return err
		}
		account.Points -= reward.PointsRequired
		account.LastActivity = now
		redemption.Reward = *reward
		return tx.Ledger().SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("reward redeemed",
		zap.Uint("customer_id", customerID),
		zap.Uint("reward_id", rewardID),
		zap.String("code", redemption.RedemptionCode),
	)
	return redemption, nil
}

func (s *LoyaltyService) RedemptionHistory(ctx context.Context, customerID uint) ([]model.RewardRedemption, error) {
	return s.store.Rewards().ListRedemptions(ctx, customerID)
}

// ListRewards trả các phần quà còn hiệu lực; customerID = 0 thì CanRedeem luôn false.
func (s *LoyaltyService) ListRewards(ctx context.Context, customerID uint) ([]model.RewardView, error) {
	rewards, err := s.store.Rewards().ListActive(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	var points int64
	if customerID != 0 {
		account, err := s.account(ctx, customerID)
		if err != nil {
			return nil, err
		}
		points = account.Points
	}
	views := make([]model.RewardView, 0, len(rewards))
	for _, r := range rewards {
		views = append(views, model.RewardView{RewardItem: r, CanRedeem: customerID != 0 && points >= r.PointsRequired})
	}
	return views, nil
}
