package model

type Customer struct {
	DTO
	Email    string `gorm:"unique;not null" json:"email"`
	Phone    string `json:"phone"`
	UserName string `json:"username"`
	Role     string `gorm:"size:20;not null;default:'customer'" json:"role"`
}
