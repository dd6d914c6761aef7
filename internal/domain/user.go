package domain

import "time"

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleTechnician UserRole = "technician"
	RoleAdmin      UserRole = "admin"
	RoleService    UserRole = "service"
	RoleFinance    UserRole = "finance"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleTechnician, RoleAdmin, RoleService, RoleFinance:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to back-office personnel.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleService || r == RoleFinance
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Phone        string    `json:"phone" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:user"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
