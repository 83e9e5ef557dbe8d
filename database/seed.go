package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_manager/constants"
	"restaurant_manager/model"
	"restaurant_manager/repository"

	"go.uber.org/zap"
)

// SeedData khởi tạo dữ liệu mặc định, chạy lại nhiều lần không tạo trùng.
func SeedData(ctx context.Context, store repository.Store, now time.Time, log *zap.Logger) error {
	if _, err := store.Programs().FindActive(ctx); errors.Is(err, repository.ErrNotFound) {
		program := model.LoyaltyProgram{
			Name:        "Restaurant Rewards",
			Description: "100 điểm cho mỗi 50 chi tiêu",
			PointsPer50: 100,
			Status:      constants.STATUS_ACTIVE,
		}
		if err := store.Programs().Create(ctx, &program); err != nil {
			return fmt.Errorf("seed loyalty program: %w", err)
		}
	} else if err != nil {
		return err
	}

	tables := []model.Table{
		{TableNumber: "T01", Capacity: 2},
		{TableNumber: "T02", Capacity: 2},
		{TableNumber: "T03", Capacity: 4},
		{TableNumber: "T04", Capacity: 4},
		{TableNumber: "T05", Capacity: 6},
		{TableNumber: "VIP1", Capacity: 10},
	}
	for _, table := range tables {
		table.Status = constants.TABLE_AVAILABLE
		if err := store.Tables().Create(ctx, &table); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			log.Warn("failed to seed table", zap.String("table", table.TableNumber), zap.Error(err))
		}
	}

	rewards, err := store.Rewards().ListActive(ctx, now)
	if err != nil {
		return err
	}
	if len(rewards) == 0 {
		for _, reward := range []model.RewardItem{
			{Name: "Free coffee", Category: "drink", PointsRequired: 500},
			{Name: "Dessert of the day", Category: "food", PointsRequired: 1200},
			{Name: "10% off next bill", Category: "discount", PointsRequired: 2500},
			{Name: "Dinner for two", Category: "experience", PointsRequired: 8000},
		} {
			reward.Status = constants.STATUS_ACTIVE
			if err := store.Rewards().Create(ctx, &reward); err != nil {
				log.Warn("failed to seed reward", zap.String("reward", reward.Name), zap.Error(err))
			}
		}
	}

	welcome := model.PromotionalCampaign{
		Code:            "WELCOME-WEEK",
		Name:            "Welcome week",
		Description:     "Nhân 1.5 điểm trong tuần đầu mở cửa",
		BonusMultiplier: 1.5,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, 7),
		Conditions:      "all customers",
		Status:          constants.STATUS_ACTIVE,
	}
	if err := store.Campaigns().Create(ctx, &welcome); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		log.Warn("failed to seed campaign", zap.Error(err))
	}

	log.Info("seed data ready")
	return nil
}
