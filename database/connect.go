package database

import (
	"fmt"

	"restaurant_manager/config"
	"restaurant_manager/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect mở kết nối Postgres và migrate schema.
// TranslateError để lỗi unique được trả về dưới dạng gorm.ErrDuplicatedKey.
func Connect(cfg config.App, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("connection opened to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Customer{},
		&model.Table{},
		&model.Order{},
		&model.AuditLog{},
		&model.LoyaltyProgram{},
		&model.LoyaltyAccount{},
		&model.PointTransaction{},
		&model.PromotionalCampaign{},
		&model.RewardItem{},
		&model.RewardRedemption{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
