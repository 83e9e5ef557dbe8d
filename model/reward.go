package model

import "time"

type RewardItem struct {
	DTO
	Name           string     `gorm:"size:100;not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	PointsRequired int64      `gorm:"not null" json:"pointsRequired"`
	Category       string     `gorm:"size:50" json:"category"`
	Status         string     `gorm:"size:20;not null;default:'active'" json:"status"`
	ExpiryDate     *time.Time `json:"expiryDate,omitempty"`
}

type RewardRedemption struct {
	DTO
	CustomerID     uint       `gorm:"not null;index" json:"customerId"`
	RewardID       uint       `gorm:"not null;index" json:"rewardId"`
	OrderID        *uint      `json:"orderId,omitempty"`
	PointsUsed     int64      `gorm:"not null" json:"pointsUsed"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	RedemptionCode string     `gorm:"size:20;uniqueIndex" json:"redemptionCode"`
	Reward         RewardItem `gorm:"foreignKey:RewardID" json:"reward"`
}

type RewardView struct {
	RewardItem
	CanRedeem bool `json:"canRedeem"`
}

type RedeemRewardInput struct {
	CustomerID uint `json:"customerId" validate:"required,gt=0"`
	RewardID   uint `json:"rewardId" validate:"required,gt=0"`
}
