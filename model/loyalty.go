package model

import "time"

type LoyaltyProgram struct {
	DTO
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	PointsPer50 int64  `gorm:"not null;default:100" json:"pointsPer50"`
	Status      string `gorm:"size:20;not null;default:'active'" json:"status"`
}

type LoyaltyAccount struct {
	DTO
	CustomerID     uint      `gorm:"uniqueIndex;not null" json:"customerId"`
	Points         int64     `gorm:"not null;default:0" json:"points"`
	LifetimePoints int64     `gorm:"not null;default:0" json:"lifetimePoints"`
	Tier           string    `gorm:"size:20;not null;default:'bronze'" json:"tier"`
	LastActivity   time.Time `json:"lastActivity"`
}

// PointTransaction là một dòng sổ cái, chỉ thêm không sửa.
// Chỉ mục unique một phần trên order_id (kind = 'earned') giữ bất biến
// mỗi đơn hàng có tối đa một giao dịch earned.
type PointTransaction struct {
	DTO
	CustomerID     uint       `gorm:"not null;index" json:"customerId"`
	OrderID        *uint      `gorm:"uniqueIndex:idx_point_tx_order_earned,where:kind = 'earned'" json:"orderId,omitempty"`
	PointsEarned   int64      `gorm:"not null;default:0" json:"pointsEarned"`
	PointsRedeemed int64      `gorm:"not null;default:0" json:"pointsRedeemed"`
	Kind           string     `gorm:"size:20;not null;index" json:"kind"` // earned, redeemed, expired, bonus
	Description    string     `gorm:"size:255" json:"description"`
	ExpiresAt      *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	ExpiredAt      *time.Time `json:"expiredAt,omitempty"`
}

type LoyaltyAccountResponse struct {
	CustomerID     uint      `json:"customerId"`
	Points         int64     `json:"points"`
	LifetimePoints int64     `json:"lifetimePoints"`
	Tier           string    `json:"tier"`
	LastActivity   time.Time `json:"lastActivity"`
}

type LoyaltySummary struct {
	Account      LoyaltyAccountResponse `json:"account"`
	Transactions []PointTransaction     `json:"transactions"`
}

type AwardPointsInput struct {
	CustomerID uint `json:"customerId" validate:"required,gt=0"`
}
