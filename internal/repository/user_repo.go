package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"flashfix/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Phone        string    `gorm:"column:phone"`
	Email        *string   `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	Avatar       *string   `gorm:"column:avatar"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var email, avatar string
	if m.Email != nil {
		email = *m.Email
	}
	if m.Avatar != nil {
		avatar = *m.Avatar
	}

	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		Email:        email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Avatar:       avatar,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var email, avatar *string
	if u.Email != "" {
		v := strings.TrimSpace(u.Email)
		email = &v
	}
	if u.Avatar != "" {
		v := u.Avatar
		avatar = &v
	}

	return userModel{
		ID:           u.ID,
		Name:         u.Name,
		Phone:        strings.TrimSpace(u.Phone),
		Email:        email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Avatar:       avatar,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// ListByPhone returns every account registered under the phone number.
// The same phone may exist once per role (legacy data), so login without an
// explicit role must detect ambiguity.
func (r *UserRepository) ListByPhone(ctx context.Context, phone string) ([]domain.User, error) {
	var ms []userModel
	tx := r.db.WithContext(ctx).Where("phone = ?", phone).Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}

func (r *UserRepository) GetByPhoneAndRole(ctx context.Context, phone string, role domain.UserRole) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("phone = ? AND role = ?", phone, string(role)).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("phone = ?", phone).Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// UpdateFields applies a partial update built by the service layer.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.UpdateFields(ctx, id, map[string]any{"password_hash": passwordHash})
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&userModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type UserFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&userModel{})

	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []userModel
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(offset).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainUser(m))
	}
	return out, total, nil
}

func (r *UserRepository) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	var ms []userModel
	tx := r.db.WithContext(ctx).
		Where("role = ?", string(domain.RoleTechnician)).
		Order("name").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}

type UserStats struct {
	Total             int64 `json:"total"`
	Users             int64 `json:"users"`
	Technicians       int64 `json:"technicians"`
	Admins            int64 `json:"admins"`
	Finance           int64 `json:"finance"`
	NewUsersThisMonth int64 `json:"newUsersThisMonth"`
}

func (r *UserRepository) Stats(ctx context.Context) (*UserStats, error) {
	type roleCount struct {
		Role  string
		Count int64
	}

	var rows []roleCount
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	stats := &UserStats{}
	for _, rc := range rows {
		stats.Total += rc.Count
		switch domain.UserRole(rc.Role) {
		case domain.RoleUser:
			stats.Users = rc.Count
		case domain.RoleTechnician:
			stats.Technicians = rc.Count
		case domain.RoleAdmin:
			stats.Admins = rc.Count
		case domain.RoleFinance:
			stats.Finance = rc.Count
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	tx = r.db.WithContext(ctx).Model(&userModel{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.NewUsersThisMonth)
	if tx.Error != nil {
		return nil, tx.Error
	}

	return stats, nil
}

// HasOrders reports whether the user is referenced by any order, as customer
// or technician. Such users cannot be deleted.
func (r *UserRepository) HasOrders(ctx context.Context, userID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Table("orders").
		Where("user_id = ? OR technician_id = ?", userID, userID).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}
