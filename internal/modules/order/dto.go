package order

import (
	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

type CreateOrderRequest struct {
	ServiceID        int64   `json:"serviceId" binding:"required"`
	DeviceType       string  `json:"deviceType" binding:"required"`
	DeviceModel      string  `json:"deviceModel"`
	IssueDescription string  `json:"issueDescription" binding:"required"`
	UrgencyLevel     string  `json:"urgencyLevel"`
	PreferredTime    *string `json:"preferredTime"`
	ContactPhone     string  `json:"contactPhone" binding:"required"`
	ContactAddress   string  `json:"contactAddress"`
}

type AssignRequest struct {
	TechnicianID int64 `json:"technicianId" binding:"required"`
}

// TransferRequest with a nil NewTechnicianID abandons the order back to the
// pending pool.
type TransferRequest struct {
	NewTechnicianID *int64 `json:"newTechnicianId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateDetailsRequest struct {
	Diagnosis   *string  `json:"diagnosis"`
	ActualPrice *float64 `json:"actualPrice"`
	Status      *string  `json:"status"`
}

type AddLogRequest struct {
	Notes  string   `json:"notes" binding:"required"`
	Images []string `json:"images"`
}

// ListQuery carries the parsed query string of the order list endpoint.
// View "unclaimed" switches to the pending pool regardless of role scoping.
type ListQuery struct {
	Status string
	Search string
	View   string
	Page   int
	Limit  int
}

// DetailResponse is the full order view: joined detail plus the audit trail
// and any payment/review rows.
type DetailResponse struct {
	*repository.OrderDetail
	Logs     []repository.OrderLogEntry `json:"order_logs"`
	Payments []domain.Payment           `json:"payments"`
	Reviews  []domain.Review            `json:"reviews"`
}
