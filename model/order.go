package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	DTO
	CustomerID  uint            `gorm:"not null;index" json:"customerId"`
	TableID     *uint           `gorm:"index" json:"tableId,omitempty"`
	Status      string          `gorm:"size:20;not null;default:'new';index" json:"status"` // new, processing, completed, rejected, cancelled
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"totalAmount"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new processing completed rejected cancelled"`
}

type AuditLog struct {
	DTO
	CustomerID  *uint  `gorm:"index" json:"customerId"`
	ActionType  string `gorm:"size:50;not null" json:"actionType"`
	Description string `gorm:"type:text;not null" json:"description"`
}
