package domain

import "time"

// Payment and Review carry schema only. They are listed inside order details
// but have no write path in this backend.

type Payment struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	OrderID       int64     `json:"order_id" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Method        string    `json:"method"`
	Status        string    `json:"status" gorm:"default:pending"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Review struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	OrderID      int64     `json:"order_id" gorm:"not null;index"`
	UserID       int64     `json:"user_id" gorm:"not null"`
	TechnicianID int64     `json:"technician_id" gorm:"not null"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
