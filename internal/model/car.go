package model

import "time"

// Car represents a vehicle on file, keyed by its VIN
type Car struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	VIN           string    `json:"vin" gorm:"type:varchar(50);uniqueIndex;not null"`
	Make          string    `json:"make" gorm:"type:varchar(80)"`
	Model         string    `json:"model" gorm:"type:varchar(80)"`
	Year          int       `json:"year"`
	OwnerName     string    `json:"owner_name" gorm:"type:varchar(120)"`
	OwnerPhone    string    `json:"owner_phone" gorm:"type:varchar(50)"`
	ImageFilename string    `json:"image_filename,omitempty" gorm:"type:varchar(255)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
