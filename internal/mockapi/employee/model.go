package employee

import "time"

// Employee is the representative admin-console resource served by the mock
// API. Email carries a unique index so duplicate creates surface the
// duplicate-key path.
type Employee struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:100;not null"`
	Email      string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	Salary     float64   `json:"salary"`
	LocationID string    `json:"location_id" gorm:"size:64;index"`
	HiredAt    time.Time `json:"hired_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
