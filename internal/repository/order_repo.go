package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"flashfix/internal/domain"
)

// ErrNoRowsAffected signals a conditional update whose precondition no longer
// held: the caller lost a race to a concurrent transition.
var ErrNoRowsAffected = errors.New("no rows affected")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	OrderNumber      string    `gorm:"column:order_number"`
	UserID           int64     `gorm:"column:user_id"`
	TechnicianID     *int64    `gorm:"column:technician_id"`
	ServiceID        int64     `gorm:"column:service_id"`
	DeviceType       string    `gorm:"column:device_type"`
	DeviceModel      string    `gorm:"column:device_model"`
	IssueDescription string    `gorm:"column:issue_description"`
	Diagnosis        *string   `gorm:"column:diagnosis"`
	UrgencyLevel     string    `gorm:"column:urgency_level"`
	PreferredTime    *string   `gorm:"column:preferred_time"`
	ContactPhone     string    `gorm:"column:contact_phone"`
	ContactAddress   string    `gorm:"column:contact_address"`
	Status           string    `gorm:"column:status"`
	EstimatedPrice   float64   `gorm:"column:estimated_price"`
	ActualPrice      *float64  `gorm:"column:actual_price"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

func toDomainOrder(m orderModel) *domain.Order {
	return &domain.Order{
		ID:               m.ID,
		OrderNumber:      m.OrderNumber,
		UserID:           m.UserID,
		TechnicianID:     m.TechnicianID,
		ServiceID:        m.ServiceID,
		DeviceType:       m.DeviceType,
		DeviceModel:      m.DeviceModel,
		IssueDescription: m.IssueDescription,
		Diagnosis:        m.Diagnosis,
		UrgencyLevel:     m.UrgencyLevel,
		PreferredTime:    m.PreferredTime,
		ContactPhone:     m.ContactPhone,
		ContactAddress:   m.ContactAddress,
		Status:           domain.OrderStatus(m.Status),
		EstimatedPrice:   m.EstimatedPrice,
		ActualPrice:      m.ActualPrice,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toOrderModel(o *domain.Order) orderModel {
	return orderModel{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		TechnicianID:     o.TechnicianID,
		ServiceID:        o.ServiceID,
		DeviceType:       o.DeviceType,
		DeviceModel:      o.DeviceModel,
		IssueDescription: o.IssueDescription,
		Diagnosis:        o.Diagnosis,
		UrgencyLevel:     o.UrgencyLevel,
		PreferredTime:    o.PreferredTime,
		ContactPhone:     o.ContactPhone,
		ContactAddress:   o.ContactAddress,
		Status:           string(o.Status),
		EstimatedPrice:   o.EstimatedPrice,
		ActualPrice:      o.ActualPrice,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// Create inserts the order and its "create" audit row in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order, operatorID int64) error {
	m := toOrderModel(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return tx.Create(&orderLogModel{
			OrderID:    m.ID,
			Action:     domain.LogActionCreate,
			Notes:      "Order created",
			Images:     "[]",
			OperatorID: operatorID,
		}).Error
	})
	if err != nil {
		return err
	}
	*o = *toDomainOrder(m)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainOrder(m), nil
}

// TransitionParams describes one guarded state change. The update runs as
// "UPDATE orders SET ... WHERE id = ? AND status IN (...) [AND technician_id = ?]"
// and fails with ErrNoRowsAffected when the precondition no longer holds.
// The audit row is written in the same transaction, so a lost race leaves
// no log entry behind.
type TransitionParams struct {
	OrderID    int64
	Expect     []domain.OrderStatus // allowed current statuses; empty = no status guard
	ExpectTech *int64               // required current technician; nil = no guard
	SetStatus  domain.OrderStatus
	SetTech    *int64 // new technician; nil = leave as is
	ClearTech  bool   // set technician to NULL
	LogAction  string
	LogNotes   string
	OperatorID int64
}

func (r *OrderRepository) Transition(ctx context.Context, p TransitionParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&orderModel{}).Where("id = ?", p.OrderID)
		if len(p.Expect) > 0 {
			statuses := make([]string, 0, len(p.Expect))
			for _, s := range p.Expect {
				statuses = append(statuses, string(s))
			}
			q = q.Where("status IN ?", statuses)
		}
		if p.ExpectTech != nil {
			q = q.Where("technician_id = ?", *p.ExpectTech)
		}

		updates := map[string]any{
			"status":     string(p.SetStatus),
			"updated_at": time.Now(),
		}
		if p.SetTech != nil {
			updates["technician_id"] = *p.SetTech
		}
		if p.ClearTech {
			updates["technician_id"] = nil
		}

		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoRowsAffected
		}

		return tx.Create(&orderLogModel{
			OrderID:    p.OrderID,
			Action:     p.LogAction,
			Notes:      p.LogNotes,
			Images:     "[]",
			OperatorID: p.OperatorID,
		}).Error
	})
}

// UpdateDetails applies a technician's partial update (diagnosis, actual
// price, optional status) together with its audit row.
func (r *OrderRepository) UpdateDetails(ctx context.Context, orderID int64, updates map[string]any, operatorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates["updated_at"] = time.Now()
		res := tx.Model(&orderModel{}).Where("id = ?", orderID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoRowsAffected
		}

		return tx.Create(&orderLogModel{
			OrderID:    orderID,
			Action:     domain.LogActionUpdateDetails,
			Notes:      "Order details updated",
			Images:     "[]",
			OperatorID: operatorID,
		}).Error
	})
}

type OrderFilter struct {
	Status       string
	Search       string
	UserID       int64 // scope to customer
	TechnicianID int64 // scope to technician
	Unclaimed    bool  // pending pool
	Page         int
	Limit        int
}

// OrderListItem is an order row with the display names the list view joins in.
type OrderListItem struct {
	domain.Order
	ServiceName    string  `json:"service_name"`
	UserName       string  `json:"user_name"`
	TechnicianName *string `json:"technician_name,omitempty"`
}

type orderListRow struct {
	orderModel
	ServiceName    *string `gorm:"column:service_name"`
	UserName       *string `gorm:"column:user_name"`
	TechnicianName *string `gorm:"column:technician_name"`
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]OrderListItem, int64, error) {
	base := r.db.WithContext(ctx).Table("orders o")

	if f.Unclaimed {
		base = base.Where("o.status = ?", string(domain.OrderPending))
	} else {
		if f.UserID != 0 {
			base = base.Where("o.user_id = ?", f.UserID)
		}
		if f.TechnicianID != 0 {
			base = base.Where("o.technician_id = ?", f.TechnicianID)
		}
		if f.Status != "" {
			base = base.Where("o.status = ?", f.Status)
		}
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		base = base.Where("o.order_number LIKE ? OR o.device_model LIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []orderListRow
	offset := (f.Page - 1) * f.Limit
	err := base.Session(&gorm.Session{}).
		Select("o.*, s.name AS service_name, u.name AS user_name, t.name AS technician_name").
		Joins("LEFT JOIN services s ON o.service_id = s.id").
		Joins("LEFT JOIN users u ON o.user_id = u.id").
		Joins("LEFT JOIN users t ON o.technician_id = t.id").
		Order("o.created_at DESC").
		Limit(f.Limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]OrderListItem, 0, len(rows))
	for _, row := range rows {
		item := OrderListItem{Order: *toDomainOrder(row.orderModel)}
		if row.ServiceName != nil {
			item.ServiceName = *row.ServiceName
		}
		if row.UserName != nil {
			item.UserName = *row.UserName
		}
		item.TechnicianName = row.TechnicianName
		out = append(out, item)
	}
	return out, total, nil
}

// PersonSummary is the joined user/technician block in the order detail.
type PersonSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type ServiceSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	BasePrice float64 `json:"base_price"`
}

type OrderDetail struct {
	domain.Order
	Customer   *PersonSummary  `json:"users,omitempty"`
	Service    *ServiceSummary `json:"services,omitempty"`
	Technician *PersonSummary  `json:"technicians,omitempty"`
}

type orderDetailRow struct {
	orderModel
	ServiceName      *string  `gorm:"column:service_name"`
	ServiceCategory  *string  `gorm:"column:service_category"`
	ServiceBasePrice *float64 `gorm:"column:service_base_price"`
	UserName         *string  `gorm:"column:user_name"`
	UserPhone        *string  `gorm:"column:user_phone"`
	UserEmail        *string  `gorm:"column:user_email"`
	UserRole         *string  `gorm:"column:user_role"`
	TechName         *string  `gorm:"column:technician_name"`
	TechPhone        *string  `gorm:"column:technician_phone"`
	TechRole         *string  `gorm:"column:technician_role"`
}

func (r *OrderRepository) GetDetail(ctx context.Context, id int64) (*OrderDetail, error) {
	var row orderDetailRow
	tx := r.db.WithContext(ctx).Table("orders o").
		Select(`o.*,
			s.name AS service_name, s.category AS service_category, s.base_price AS service_base_price,
			u.name AS user_name, u.phone AS user_phone, u.email AS user_email, u.role AS user_role,
			t.name AS technician_name, t.phone AS technician_phone, t.role AS technician_role`).
		Joins("LEFT JOIN services s ON o.service_id = s.id").
		Joins("LEFT JOIN users u ON o.user_id = u.id").
		Joins("LEFT JOIN users t ON o.technician_id = t.id").
		Where("o.id = ?", id).
		Scan(&row)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	detail := &OrderDetail{Order: *toDomainOrder(row.orderModel)}

	detail.Customer = &PersonSummary{
		ID:    row.UserID,
		Name:  deref(row.UserName),
		Phone: deref(row.UserPhone),
		Email: deref(row.UserEmail),
		Role:  deref(row.UserRole),
	}
	if row.ServiceName != nil {
		detail.Service = &ServiceSummary{
			ID:       row.ServiceID,
			Name:     *row.ServiceName,
			Category: deref(row.ServiceCategory),
		}
		if row.ServiceBasePrice != nil {
			detail.Service.BasePrice = *row.ServiceBasePrice
		}
	}
	if row.TechnicianID != nil {
		detail.Technician = &PersonSummary{
			ID:    *row.TechnicianID,
			Name:  deref(row.TechName),
			Phone: deref(row.TechPhone),
			Role:  deref(row.TechRole),
		}
	}

	return detail, nil
}

func (r *OrderRepository) ListPayments(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&out)
	return out, tx.Error
}

func (r *OrderRepository) ListReviews(ctx context.Context, orderID int64) ([]domain.Review, error) {
	var out []domain.Review
	tx := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&out)
	return out, tx.Error
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
