package repository

import (
	"context"
	"time"

	"restaurant_manager/model"

	"gorm.io/gorm"
)

type programRepo struct{ db *gorm.DB }

func (r *programRepo) Create(ctx context.Context, program *model.LoyaltyProgram) error {
	return translate(r.db.WithContext(ctx).Create(program).Error)
}

func (r *programRepo) FindActive(ctx context.Context) (*model.LoyaltyProgram, error) {
	var program model.LoyaltyProgram
	if err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("id asc").
		First(&program).Error; err != nil {
		return nil, translate(err)
	}
	return &program, nil
}

type campaignRepo struct{ db *gorm.DB }

func (r *campaignRepo) Create(ctx context.Context, campaign *model.PromotionalCampaign) error {
	return translate(r.db.WithContext(ctx).Create(campaign).Error)
}

func (r *campaignRepo) FindActive(ctx context.Context, now time.Time) ([]model.PromotionalCampaign, error) {
	var campaigns []model.PromotionalCampaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date <= ? AND end_date >= ?", "active", now, now).
		Find(&campaigns).Error
	return campaigns, translate(err)
}

func (r *campaignRepo) List(ctx context.Context) ([]model.PromotionalCampaign, error) {
	var campaigns []model.PromotionalCampaign
	err := r.db.WithContext(ctx).Order("start_date desc").Find(&campaigns).Error
	return campaigns, translate(err)
}
