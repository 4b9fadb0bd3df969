package model

import "time"

// Part represents an inventory part. Quantity is on-hand stock and is
// only ever decremented through the inventory ledger.
type Part struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PartNumber  string    `json:"part_number" gorm:"type:varchar(80);uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"type:varchar(120);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
