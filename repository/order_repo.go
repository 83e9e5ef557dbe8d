package repository

import (
	"context"
	"time"

	"restaurant_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct{ db *gorm.DB }

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, status string, completedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepo) CountActiveOrdersForTable(ctx context.Context, tableID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("table_id = ? AND status IN ?", tableID, ActiveOrderStatuses).
		Count(&count).Error
	return count, translate(err)
}

type auditRepo struct{ db *gorm.DB }

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}
