package repository

import (
	"context"
	"errors"
	"time"

	"restaurant_manager/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store gom các repository dùng chung một kết nối (hoặc một transaction).
type Store interface {
	Orders() OrderRepository
	Tables() TableRepository
	Ledger() LedgerRepository
	Programs() ProgramRepository
	Campaigns() CampaignRepository
	Rewards() RewardRepository
	Audit() AuditRepository

	// Transaction chạy fn trong một transaction; fn trả lỗi thì rollback.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string, completedAt *time.Time) error
	CountActiveOrdersForTable(ctx context.Context, tableID uint) (int64, error)
}

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	FindByID(ctx context.Context, id uint) (*model.Table, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type LedgerRepository interface {
	FindEarnedTransactionForOrder(ctx context.Context, orderID uint) (*model.PointTransaction, error)
	// Append thêm một dòng sổ cái. Trả ErrDuplicate nếu đơn hàng đã có dòng earned.
	Append(ctx context.Context, tx *model.PointTransaction) error
	ListForCustomer(ctx context.Context, customerID uint, limit int) ([]model.PointTransaction, error)
	FindExpirable(ctx context.Context, now time.Time) ([]model.PointTransaction, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.PointTransaction, error)
	MarkExpired(ctx context.Context, id uint, at time.Time) error

	FindAccount(ctx context.Context, customerID uint) (*model.LoyaltyAccount, error)
	FindAccountForUpdate(ctx context.Context, customerID uint) (*model.LoyaltyAccount, error)
	// GetOrCreateAccountForUpdate tạo tài khoản lần đầu cần đến và khoá dòng đó.
	GetOrCreateAccountForUpdate(ctx context.Context, customerID uint, now time.Time) (*model.LoyaltyAccount, error)
	SaveAccount(ctx context.Context, account *model.LoyaltyAccount) error
}

type ProgramRepository interface {
	Create(ctx context.Context, program *model.LoyaltyProgram) error
	FindActive(ctx context.Context) (*model.LoyaltyProgram, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.PromotionalCampaign) error
	FindActive(ctx context.Context, now time.Time) ([]model.PromotionalCampaign, error)
	List(ctx context.Context) ([]model.PromotionalCampaign, error)
}

type RewardRepository interface {
	Create(ctx context.Context, reward *model.RewardItem) error
	FindByID(ctx context.Context, id uint) (*model.RewardItem, error)
	ListActive(ctx context.Context, now time.Time) ([]model.RewardItem, error)
	CreateRedemption(ctx context.Context, redemption *model.RewardRedemption) error
	ListRedemptions(ctx context.Context, customerID uint) ([]model.RewardRedemption, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
}

// ActiveOrderStatuses là các trạng thái khiến bàn đang có khách.
var ActiveOrderStatuses = []string{"new", "processing"}
