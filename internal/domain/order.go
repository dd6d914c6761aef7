package domain

import "time"

type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderPendingAcceptance OrderStatus = "pending_acceptance"
	OrderInProgress        OrderStatus = "in_progress"
	OrderCompleted         OrderStatus = "completed"
	OrderCancelled         OrderStatus = "cancelled"
	OrderPaid              OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPendingAcceptance, OrderInProgress,
		OrderCompleted, OrderCancelled, OrderPaid:
		return true
	}
	return false
}

// Terminal statuses cannot be cancelled by the customer anymore.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Log actions written on order transitions and annotations.
const (
	LogActionCreate        = "create"
	LogActionAssign        = "assign"
	LogActionClaim         = "claim"
	LogActionAccept        = "accept"
	LogActionReject        = "reject"
	LogActionTransfer      = "transfer"
	LogActionAbandon       = "abandon"
	LogActionStatusChange  = "status_change"
	LogActionUpdateDetails = "update_details"
	LogActionNote          = "log"
)

type Order struct {
	ID               int64       `json:"id" gorm:"primaryKey"`
	OrderNumber      string      `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID           int64       `json:"user_id" gorm:"not null;index"`
	TechnicianID     *int64      `json:"technician_id,omitempty" gorm:"index"`
	ServiceID        int64       `json:"service_id" gorm:"not null;index"`
	DeviceType       string      `json:"device_type" gorm:"not null"`
	DeviceModel      string      `json:"device_model"`
	IssueDescription string      `json:"issue_description" gorm:"type:text;not null"`
	Diagnosis        *string     `json:"diagnosis,omitempty" gorm:"type:text"`
	UrgencyLevel     string      `json:"urgency_level" gorm:"default:normal"`
	PreferredTime    *string     `json:"preferred_time,omitempty"`
	ContactPhone     string      `json:"contact_phone" gorm:"not null"`
	ContactAddress   string      `json:"contact_address"`
	Status           OrderStatus `json:"status" gorm:"not null;default:pending;index"`
	EstimatedPrice   float64     `json:"estimated_price"`
	ActualPrice      *float64    `json:"actual_price,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderLog is the append-only audit trail: one row per transition or note,
// never updated or deleted.
type OrderLog struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	OrderID    int64     `json:"order_id" gorm:"not null;index"`
	Action     string    `json:"action" gorm:"not null"`
	Notes      string    `json:"notes" gorm:"type:text"`
	Images     []string  `json:"images,omitempty" gorm:"serializer:json"`
	OperatorID int64     `json:"operator_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
