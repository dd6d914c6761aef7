package domain

import "time"

type Service struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null"`
	Description       string    `json:"description" gorm:"type:text;not null"`
	Category          string    `json:"category" gorm:"not null;index"`
	BasePrice         float64   `json:"base_price" gorm:"not null"`
	EstimatedDuration *int      `json:"estimated_duration,omitempty"`
	IsActive          bool      `json:"is_active" gorm:"default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
