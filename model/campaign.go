package model

import "time"

type PromotionalCampaign struct {
	DTO
	Code            string    `gorm:"uniqueIndex;not null" json:"code"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	BonusMultiplier float64   `gorm:"not null;default:1" json:"bonusMultiplier"`
	StartDate       time.Time `gorm:"not null;index" json:"startDate"`
	EndDate         time.Time `gorm:"not null;index" json:"endDate"`
	Conditions      string    `gorm:"type:text" json:"conditions"`
	Status          string    `gorm:"size:20;not null;default:'active'" json:"status"` // active, inactive, expired
}

// IsActive: status active và now nằm trong [StartDate, EndDate]
func (c PromotionalCampaign) IsActive(now time.Time) bool {
	return c.Status == "active" && !now.Before(c.StartDate) && !now.After(c.EndDate)
}

type CreateCampaignInput struct {
	Name            string    `json:"name" validate:"required,max=100"`
	Description     string    `json:"description"`
	BonusMultiplier float64   `json:"bonusMultiplier" validate:"required,gt=1"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	Conditions      string    `json:"conditions"`
}
