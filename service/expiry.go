package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// errNothingToExpire đánh dấu dòng bị bỏ qua trong lần quét này
var errNothingToExpire = errors.New("nothing to expire")

// PointExpirySweeper huỷ điểm earned đã quá hạn. Mỗi dòng là một transaction riêng.
//
// Không theo dõi lô: một dòng earned chỉ bị huỷ khi số dư hiện tại còn đủ bằng đúng số điểm của nó,
// nếu không thì để lại cho lần quét sau.
type PointExpirySweeper struct {
	store repository.Store
	log   *zap.Logger
}

func NewPointExpirySweeper(store repository.Store, log *zap.Logger) *PointExpirySweeper {
	return &PointExpirySweeper{store: store, log: log}
}

// Sweep trả tổng số điểm đã huỷ. Dòng có expires_at <= now được xem là hết hạn.
func (s *PointExpirySweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "loyalty.SweepExpiredPoints")
	defer span.End()

	candidates, err := s.store.Ledger().FindExpirable(ctx, now)
	if err != nil {
		return 0, err
	}

	var total int64
	var failures int
	for _, candidate := range candidates {
		amount, err := s.expireOne(ctx, candidate.ID, now)
		switch {
		case err == nil:
			total += amount
		case errors.Is(err, errNothingToExpire):
		default:
			failures++
			s.log.Warn("expire points failed", zap.Uint("transaction_id", candidate.ID), zap.Error(err))
		}
	}
	span.SetAttributes(attribute.Int64("points_expired", total), attribute.Int("failures", failures))
	if total > 0 || failures > 0 {
		s.log.Info("expiry sweep finished",
			zap.Int("candidates", len(candidates)),
			zap.Int64("points_expired", total),
			zap.Int("failures", failures),
		)
	}
	return total, nil
}

func (s *PointExpirySweeper) expireOne(ctx context.Context, id uint, now time.Time) (int64, error) {
	var amount int64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		earned, err := tx.Ledger().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// có thể đã bị một lần quét khác xử lý
		if earned.ExpiredAt != nil || earned.ExpiresAt == nil || earned.ExpiresAt.After(now) {
			return errNothingToExpire
		}
		account, err := tx.Ledger().FindAccountForUpdate(ctx, earned.CustomerID)
		if err != nil {
			return err
		}
		if account.Points < earned.PointsEarned {
			return errNothingToExpire
		}

		if err := tx.Ledger().Append(ctx, &model.PointTransaction{
			CustomerID:     earned.CustomerID,
			PointsRedeemed: earned.PointsEarned,
			Kind:           constants.TX_EXPIRED,
			Description:    fmt.Sprintf("Points expired from %s", earned.CreatedAt.Format("2006-01-02")),
		}); err != nil {
			return err
		}
		account.Points -= earned.PointsEarned
		if err := tx.Ledger().SaveAccount(ctx, account); err != nil {
			return err
		}
		amount = earned.PointsEarned
		return tx.Ledger().MarkExpired(ctx, earned.ID, now)
	})
	return amount, err
}
