package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository { return &orderRepo{db: s.db} }
func (s *GormStore) Tables() TableRepository { return &tableRepo{db: s.db} }
func (s *GormStore) Ledger() LedgerRepository { return &ledgerRepo{db: s.db} }
func (s *GormStore) Programs() ProgramRepository { return &programRepo{db: s.db} }
func (s *GormStore) Campaigns() CampaignRepository { return &campaignRepo{db: s.db} }
func (s *GormStore) Rewards() RewardRepository { return &rewardRepo{db: s.db} }
func (s *GormStore) Audit() AuditRepository { return &auditRepo{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translate đổi lỗi gorm/pgx sang lỗi của repository
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
