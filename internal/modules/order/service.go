package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

const (
	orderNumberPrefix = "XGX"

	// defaultContactAddress fills in for customers who skip the address at
	// creation; service staff confirm it later.
	defaultContactAddress = "Pending confirmation"
)

var urgencyLevels = map[string]bool{
	"low":    true,
	"normal": true,
	"high":   true,
	"urgent": true,
}

type Service struct {
	orders  OrderRepository
	logs    LogRepository
	catalog ServiceCatalog
	users   UserDirectory
	notify  Notifier
}

func NewService(orders OrderRepository, logs LogRepository, catalog ServiceCatalog, users UserDirectory, notify Notifier) *Service {
	return &Service{
		orders:  orders,
		logs:    logs,
		catalog: catalog,
		users:   users,
		notify:  notify,
	}
}

// newOrderNumber builds "XGX" + unix millis + 4 uppercase hex chars. The
// column's unique index is the real collision guard.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s%d%s", orderNumberPrefix, time.Now().UnixMilli(), suffix)
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateOrderRequest) (*domain.Order, error) {
	urgency := req.UrgencyLevel
	if urgency == "" {
		urgency = "normal"
	}
	if !urgencyLevels[urgency] {
		return nil, fmt.Errorf("%w: invalid urgency level", ErrValidation)
	}

	price, err := s.catalog.GetActiveBasePrice(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	address := strings.TrimSpace(req.ContactAddress)
	if address == "" {
		address = defaultContactAddress
	}

	o := &domain.Order{
		OrderNumber:      newOrderNumber(),
		UserID:           userID,
		ServiceID:        req.ServiceID,
		DeviceType:       req.DeviceType,
		DeviceModel:      req.DeviceModel,
		IssueDescription: req.IssueDescription,
		UrgencyLevel:     urgency,
		PreferredTime:    req.PreferredTime,
		ContactPhone:     req.ContactPhone,
		ContactAddress:   address,
		Status:           domain.OrderPending,
		EstimatedPrice:   price,
	}
	if err := s.orders.Create(ctx, o, userID); err != nil {
		return nil, err
	}

	s.notify.NotifyOrderCreated(o)
	return o, nil
}

// List scopes the result set by the caller's role: customers see their own
// orders, technicians their assignments, staff everything. View "unclaimed"
// returns the pending pool instead.
func (s *Service) List(ctx context.Context, actorID int64, role domain.UserRole, q ListQuery) ([]repository.OrderListItem, int64, error) {
	f := repository.OrderFilter{
		Status: q.Status,
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	}

	if q.View == "unclaimed" {
		f.Unclaimed = true
	} else {
		switch role {
		case domain.RoleUser:
			f.UserID = actorID
		case domain.RoleTechnician:
			f.TechnicianID = actorID
		}
	}

	return s.orders.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, orderID int64) (*DetailResponse, error) {
	detail, err := s.orders.GetDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	logs, err := s.logs.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := s.orders.ListPayments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.orders.ListReviews(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &DetailResponse{
		OrderDetail: detail,
		Logs:        logs,
		Payments:    payments,
		Reviews:     reviews,
	}, nil
}

// Assign routes an order to a chosen technician. Allowed from pending and
// from pending_acceptance (reassignment before the current target accepts).
func (s *Service) Assign(ctx context.Context, adminID, orderID, technicianID int64) (*domain.Order, error) {
	tech, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnicianNotFound
		}
		return nil, err
	}
	if tech.Role != domain.RoleTechnician {
		return nil, ErrTechnicianNotFound
	}

	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	err = s.orders.Transition(ctx, repository.TransitionParams{
		OrderID:    orderID,
		Expect:     []domain.OrderStatus{domain.OrderPending, domain.OrderPendingAcceptance},
		SetStatus:  domain.OrderPendingAcceptance,
		SetTech:    &technicianID,
		LogAction:  domain.LogActionAssign,
		LogNotes:   fmt.Sprintf("Order assigned to technician %s", tech.Name),
		OperatorID: adminID,
	})
	if err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, domain.LogActionAssign)
}

// Claim lets a technician grab an order from the pending pool. The status
// guard makes concurrent claims race safely: exactly one wins.
func (s *Service) Claim(ctx context.Context, technicianID, orderID int64) (*domain.Order, error) {
	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	err := s.orders.Transition(ctx, repository.TransitionParams{
		OrderID:    orderID,
		Expect:     []domain.OrderStatus{domain.OrderPending},
		SetStatus:  domain.OrderInProgress,
		SetTech:    &technicianID,
		LogAction:  domain.LogActionClaim,
		LogNotes:   "Order claimed by technician",
		OperatorID: technicianID,
	})
	if err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, domain.LogActionClaim)
}

// Accept confirms an admin assignment. Only the assigned technician can
// accept, enforced by the technician guard in the update itself.
func (s *Service) Accept(ctx context.Context, technicianID, orderID int64) (*domain.Order, error) {
	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	err := s.orders.Transition(ctx, repository.TransitionParams{
		OrderID:    orderID,
		Expect:     []domain.OrderStatus{domain.OrderPendingAcceptance},
		ExpectTech: &technicianID,
		SetStatus:  domain.OrderInProgress,
		LogAction:  domain.LogActionAccept,
		LogNotes:   "Order accepted by technician",
		OperatorID: technicianID,
	})
	if err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, domain.LogActionAccept)
}

// Reject returns an assigned-but-unaccepted order to the pending pool.
func (s *Service) Reject(ctx context.Context, technicianID, orderID int64) (*domain.Order, error) {
	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	err := s.orders.Transition(ctx, repository.TransitionParams{
		OrderID:    orderID,
		Expect:     []domain.OrderStatus{domain.OrderPendingAcceptance},
		ExpectTech: &technicianID,
		SetStatus:  domain.OrderPending,
		ClearTech:  true,
		LogAction:  domain.LogActionReject,
		LogNotes:   "Order rejected by technician",
		OperatorID: technicianID,
	})
	if err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, domain.LogActionReject)
}

// Transfer hands the order to another technician (who must then accept), or
// abandons it back to the pool when newTechnicianID is nil. The only
// precondition is that the caller currently holds the order.
func (s *Service) Transfer(ctx context.Context, technicianID, orderID int64, newTechnicianID *int64) (*domain.Order, error) {
	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	p := repository.TransitionParams{
		OrderID:    orderID,
		ExpectTech: &technicianID,
		OperatorID: technicianID,
	}

	if newTechnicianID == nil {
		p.SetStatus = domain.OrderPending
		p.ClearTech = true
		p.LogAction = domain.LogActionAbandon
		p.LogNotes = "Order returned to the pending pool"
	} else {
		target, err := s.users.GetByID(ctx, *newTechnicianID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTechnicianNotFound
			}
			return nil, err
		}
		if target.Role != domain.RoleTechnician || target.ID == technicianID {
			return nil, ErrTechnicianNotFound
		}

		p.SetStatus = domain.OrderPendingAcceptance
		p.SetTech = newTechnicianID
		p.LogAction = domain.LogActionTransfer
		p.LogNotes = fmt.Sprintf("Order transferred to technician %s", target.Name)
	}

	if err := s.orders.Transition(ctx, p); err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, p.LogAction)
}

// UpdateStatus is the generic transition endpoint. Permission comes from the
// role policy; customers additionally get a non-terminal status guard so a
// concurrent completion cannot be cancelled over.
func (s *Service) UpdateStatus(ctx context.Context, actorID int64, role domain.UserRole, orderID int64, target domain.OrderStatus) (*domain.Order, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}

	o, err := s.mustGet(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateStatus(role, actorID, o, target) {
		return nil, ErrForbidden
	}

	p := repository.TransitionParams{
		OrderID:    orderID,
		SetStatus:  target,
		LogAction:  domain.LogActionStatusChange,
		LogNotes:   fmt.Sprintf("Order status changed to %s", target),
		OperatorID: actorID,
	}
	switch role {
	case domain.RoleUser:
		p.Expect = []domain.OrderStatus{
			domain.OrderPending, domain.OrderPendingAcceptance,
			domain.OrderInProgress, domain.OrderPaid,
		}
	case domain.RoleTechnician:
		p.ExpectTech = &actorID
	}

	if err := s.orders.Transition(ctx, p); err != nil {
		return nil, s.transitionErr(err)
	}

	return s.refresh(ctx, orderID, domain.LogActionStatusChange)
}

func (s *Service) UpdateDetails(ctx context.Context, technicianID, orderID int64, req UpdateDetailsRequest) (*domain.Order, error) {
	updates := map[string]any{}
	if req.Diagnosis != nil {
		updates["diagnosis"] = *req.Diagnosis
	}
	if req.ActualPrice != nil {
		if *req.ActualPrice < 0 {
			return nil, fmt.Errorf("%w: actual price cannot be negative", ErrValidation)
		}
		updates["actual_price"] = *req.ActualPrice
	}
	if req.Status != nil {
		st := domain.OrderStatus(*req.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: invalid status", ErrValidation)
		}
		updates["status"] = string(st)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.orders.UpdateDetails(ctx, orderID, updates, technicianID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		s.notify.NotifyOrderUpdated(o, domain.LogActionUpdateDetails)
	}
	return o, nil
}

func (s *Service) AddLog(ctx context.Context, operatorID, orderID int64, req AddLogRequest) (*domain.OrderLog, error) {
	if strings.TrimSpace(req.Notes) == "" {
		return nil, fmt.Errorf("%w: notes are required", ErrValidation)
	}
	if _, err := s.mustGet(ctx, orderID); err != nil {
		return nil, err
	}

	l := &domain.OrderLog{
		OrderID:    orderID,
		Action:     domain.LogActionNote,
		Notes:      req.Notes,
		Images:     req.Images,
		OperatorID: operatorID,
	}
	if err := s.logs.Append(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) mustGet(ctx context.Context, orderID int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// transitionErr maps a zero-row conditional update to the conflict error the
// handler turns into a 409.
func (s *Service) transitionErr(err error) error {
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return ErrConflict
	}
	return err
}

func (s *Service) refresh(ctx context.Context, orderID int64, action string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.notify.NotifyOrderUpdated(o, action)
	return o, nil
}
