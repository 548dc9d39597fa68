package authn

import "time"

// Operator is a console user account on the mock API side.
type Operator struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:255;not null"`
	Role         string    `json:"role" gorm:"size:32;not null"`
	LocationID   string    `json:"location_id" gorm:"size:64"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
