package order

import "flashfix/internal/domain"

// technicianTargets lists the statuses a technician may set on their own
// assigned order through the generic status endpoint.
var technicianTargets = map[domain.OrderStatus]bool{
	domain.OrderInProgress: true,
	domain.OrderCompleted:  true,
	domain.OrderPaid:       true,
}

// CanUpdateStatus is the (role, ownership, target) permission table for the
// generic status update:
//
//	admin, finance  — unrestricted
//	customer        — own order only, target cancelled, current non-terminal
//	technician      — own assigned order only, target in {in_progress, completed, paid}
func CanUpdateStatus(role domain.UserRole, actorID int64, o *domain.Order, target domain.OrderStatus) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleFinance:
		return true
	case domain.RoleUser:
		return o.UserID == actorID &&
			target == domain.OrderCancelled &&
			!o.Status.Terminal()
	case domain.RoleTechnician:
		return o.TechnicianID != nil &&
			*o.TechnicianID == actorID &&
			technicianTargets[target]
	}
	return false
}
