package model

import "time"

// WorkOrder represents a unit of repair work on one car for one client,
// optionally assigned to one mechanic.
type WorkOrder struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	CarID       uint        `json:"car_id" gorm:"index;not null"`
	ClientID    uint        `json:"client_id" gorm:"index;not null"`
	MechanicID  *uint       `json:"mechanic_id,omitempty" gorm:"index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	Description string      `json:"description" gorm:"type:text"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// WorkOrderPart records that a work order consumed a quantity of a
// part. Rows are append-only and removed only together with the order.
type WorkOrderPart struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	WorkOrderID  uint      `json:"work_order_id" gorm:"index;not null"`
	PartID       uint      `json:"part_id" gorm:"index;not null"`
	QuantityUsed int       `json:"quantity_used" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// WorkOrderImage is an uploaded attachment owned by one work order
type WorkOrderImage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	WorkOrderID uint      `json:"work_order_id" gorm:"index;not null"`
	Filename    string    `json:"filename" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at"`
}
