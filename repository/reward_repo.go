package repository

import (
	"context"
	"time"

	"restaurant_manager/model"

	"gorm.io/gorm"
)

type rewardRepo struct{ db *gorm.DB }

func (r *rewardRepo) Create(ctx context.Context, reward *model.RewardItem) error {
	return translate(r.db.WithContext(ctx).Create(reward).Error)
}

func (r *rewardRepo) FindByID(ctx context.Context, id uint) (*model.RewardItem, error) {
	var reward model.RewardItem
	if err := r.db.WithContext(ctx).First(&reward, id).Error; err != nil {
		return nil, translate(err)
	}
	return &reward, nil
}

func (r *rewardRepo) ListActive(ctx context.Context, now time.Time) ([]model.RewardItem, error) {
	var rewards []model.RewardItem
	err := r.db.WithContext(ctx).
		Where("status = ? AND (expiry_date IS NULL OR expiry_date >= ?)", "active", now).
		Order("points_required asc").
		Find(&rewards).Error
	return rewards, translate(err)
}

func (r *rewardRepo) CreateRedemption(ctx context.Context, redemption *model.RewardRedemption) error {
	return translate(r.db.WithContext(ctx).Omit("Reward").Create(redemption).Error)
}

func (r *rewardRepo) ListRedemptions(ctx context.Context, customerID uint) ([]model.RewardRedemption, error) {
	var redemptions []model.RewardRedemption
	err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&redemptions).Error
	return redemptions, translate(err)
}
