package repository

import (
	"context"
	"time"

	"restaurant_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepo struct{ db *gorm.DB }

func (r *ledgerRepo) FindEarnedTransactionForOrder(ctx context.Context, orderID uint) (*model.PointTransaction, error) {
	var tx model.PointTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND kind = ?", orderID, "earned").
		First(&tx).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *ledgerRepo) Append(ctx context.Context, tx *model.PointTransaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *ledgerRepo) ListForCustomer(ctx context.Context, customerID uint, limit int) ([]model.PointTransaction, error) {
	var txs []model.PointTransaction
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&txs).Error
	return txs, translate(err)
}

func (r *ledgerRepo) FindExpirable(ctx context.Context, now time.Time) ([]model.PointTransaction, error) {
	var txs []model.PointTransaction
	err := r.db.WithContext(ctx).
		Where("kind = ? AND points_earned > 0 AND expires_at <= ? AND expired_at IS NULL", "earned", now).
		Order("expires_at asc, id asc").
		Find(&txs).Error
	return txs, translate(err)
}

func (r *ledgerRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.PointTransaction, error) {
	var tx model.PointTransaction
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (r *ledgerRepo) MarkExpired(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.PointTransaction{}).
		Where("id = ? AND expired_at IS NULL", id).
		Update("expired_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ledgerRepo) FindAccount(ctx context.Context, customerID uint) (*model.LoyaltyAccount, error) {
	var account model.LoyaltyAccount
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *ledgerRepo) FindAccountForUpdate(ctx context.Context, customerID uint) (*model.LoyaltyAccount, error) {
	var account model.LoyaltyAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *ledgerRepo) GetOrCreateAccountForUpdate(ctx context.Context, customerID uint, now time.Time) (*model.LoyaltyAccount, error) {
	fresh := model.LoyaltyAccount{CustomerID: customerID, Tier: "bronze", LastActivity: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "customer_id"}}, DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, translate(err)
	}
	return r.FindAccountForUpdate(ctx, customerID)
}

func (r *ledgerRepo) SaveAccount(ctx context.Context, account *model.LoyaltyAccount) error {
	return translate(r.db.WithContext(ctx).Save(account).Error)
}
