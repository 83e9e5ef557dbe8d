package repository

import (
	"context"

	"restaurant_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tableRepo struct{ db *gorm.DB }

func (r *tableRepo) Create(ctx context.Context, table *model.Table) error {
	return translate(r.db.WithContext(ctx).Create(table).Error)
}

func (r *tableRepo) FindByID(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	if err := r.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Table, error) {
	var table model.Table
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&table, id).Error; err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (r *tableRepo) List(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).Order("id asc").Find(&tables).Error
	return tables, translate(err)
}

func (r *tableRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Table{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Table{}).Where("status = ?", status).Count(&count).Error
	return count, translate(err)
}
