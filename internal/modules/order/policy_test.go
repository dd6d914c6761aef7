package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flashfix/internal/domain"
)

func TestCanUpdateStatus(t *testing.T) {
	techID := int64(11)
	assigned := &domain.Order{ID: 1, UserID: 42, TechnicianID: &techID, Status: domain.OrderInProgress}
	unassigned := &domain.Order{ID: 2, UserID: 42, Status: domain.OrderPending}
	completed := &domain.Order{ID: 3, UserID: 42, Status: domain.OrderCompleted}

	tests := []struct {
		name    string
		role    domain.UserRole
		actorID int64
		order   *domain.Order
		target  domain.OrderStatus
		want    bool
	}{
		{"admin can set anything", domain.RoleAdmin, 1, assigned, domain.OrderCancelled, true},
		{"finance can set anything", domain.RoleFinance, 1, assigned, domain.OrderPaid, true},
		{"customer cancels own pending order", domain.RoleUser, 42, unassigned, domain.OrderCancelled, true},
		{"customer cannot cancel completed order", domain.RoleUser, 42, completed, domain.OrderCancelled, false},
		{"customer cannot cancel someone else's order", domain.RoleUser, 7, unassigned, domain.OrderCancelled, false},
		{"customer cannot complete own order", domain.RoleUser, 42, assigned, domain.OrderCompleted, false},
		{"technician completes own order", domain.RoleTechnician, 11, assigned, domain.OrderCompleted, true},
		{"technician marks own order paid", domain.RoleTechnician, 11, assigned, domain.OrderPaid, true},
		{"technician cannot cancel own order", domain.RoleTechnician, 11, assigned, domain.OrderCancelled, false},
		{"technician cannot touch unassigned order", domain.RoleTechnician, 11, unassigned, domain.OrderInProgress, false},
		{"other technician cannot touch the order", domain.RoleTechnician, 12, assigned, domain.OrderCompleted, false},
		{"service role has no status rights", domain.RoleService, 1, assigned, domain.OrderCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanUpdateStatus(tt.role, tt.actorID, tt.order, tt.target)
			assert.Equal(t, tt.want, got)
		})
	}
}
