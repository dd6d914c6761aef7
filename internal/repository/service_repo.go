package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"flashfix/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name"`
	Description       string    `gorm:"column:description"`
	Category          string    `gorm:"column:category"`
	BasePrice         float64   `gorm:"column:base_price"`
	EstimatedDuration *int      `gorm:"column:estimated_duration"`
	IsActive          bool      `gorm:"column:is_active"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) *domain.Service {
	return &domain.Service{
		ID:                m.ID,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		BasePrice:         m.BasePrice,
		EstimatedDuration: m.EstimatedDuration,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toServiceModel(s *domain.Service) serviceModel {
	return serviceModel{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		Category:          s.Category,
		BasePrice:         s.BasePrice,
		EstimatedDuration: s.EstimatedDuration,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	m := toServiceModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainService(m)
	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainService(m), nil
}

// GetActiveBasePrice returns the base price of an active service, or
// gorm.ErrRecordNotFound when the service is missing or deactivated.
func (r *ServiceRepository) GetActiveBasePrice(ctx context.Context, id int64) (float64, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&m)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return m.BasePrice, nil
}

func (r *ServiceRepository) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	tx := r.db.WithContext(ctx).Model(&serviceModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&serviceModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasOrders reports whether any order references the service; such services
// cannot be deleted.
func (r *ServiceRepository) HasOrders(ctx context.Context, serviceID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Table("orders").Where("service_id = ?", serviceID).Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

type ServiceFilter struct {
	Category string
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

func (r *ServiceRepository) List(ctx context.Context, f ServiceFilter) ([]domain.Service, int64, error) {
	q := r.db.WithContext(ctx).Model(&serviceModel{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []serviceModel
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.Service, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainService(m))
	}
	return out, total, nil
}

func (r *ServiceRepository) Categories(ctx context.Context) ([]string, error) {
	var out []string
	tx := r.db.WithContext(ctx).Model(&serviceModel{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &out)
	return out, tx.Error
}

// PopularService is a catalog entry ranked by how many orders reference it.
type PopularService struct {
	domain.Service
	OrderCount int64 `json:"orderCount"`
}

type popularServiceRow struct {
	serviceModel
	OrderCount int64 `gorm:"column:order_count"`
}

func (r *ServiceRepository) Popular(ctx context.Context, limit int) ([]PopularService, error) {
	var rows []popularServiceRow
	tx := r.db.WithContext(ctx).Table("services s").
		Select("s.*, COALESCE(COUNT(o.id), 0) AS order_count").
		Joins("LEFT JOIN orders o ON o.service_id = s.id").
		Where("s.is_active = ?", true).
		Group("s.id").
		Order("order_count DESC, s.created_at DESC").
		Limit(limit).
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]PopularService, 0, len(rows))
	for _, row := range rows {
		out = append(out, PopularService{
			Service:    *toDomainService(row.serviceModel),
			OrderCount: row.OrderCount,
		})
	}
	return out, nil
}
