package model

type Table struct {
	DTO
	TableNumber string `gorm:"size:10;uniqueIndex;not null" json:"tableNumber"`
	Status      string `gorm:"size:20;not null;default:'available'" json:"status"` // available, occupied, reserved
	Capacity    int    `gorm:"not null;default:4" json:"capacity"`
}

type TableStatusReport struct {
	DryRun   bool                `json:"dryRun"`
	Changes  []TableStatusChange `json:"changes"`
	Occupied int64               `json:"occupied"`
}

type TableStatusChange struct {
	TableID     uint   `json:"tableId"`
	TableNumber string `json:"tableNumber"`
	Previous    string `json:"previous"`
	Expected    string `json:"expected"`
	Fixed       bool   `json:"fixed"`
}
