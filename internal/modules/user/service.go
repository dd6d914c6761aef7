package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

var phoneRe = regexp.MustCompile(`^1[3-9]\d{9}$`)

const minPasswordLen = 6

type Service struct {
	users UserRepository
}

func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Create provisions an account with any role, including staff roles that
// cannot self-register.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	phone := strings.TrimSpace(req.Phone)
	if !phoneRe.MatchString(phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	exists, err := s.users.ExistsByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, actorID int64, actorRole domain.UserRole, id int64) (*domain.User, error) {
	if actorID != id && actorRole != domain.RoleAdmin {
		return nil, ErrForbidden
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Update applies a profile edit. Users edit themselves; admins edit anyone
// and are the only ones who may change roles.
func (s *Service) Update(ctx context.Context, actorID int64, actorRole domain.UserRole, id int64, req UpdateUserRequest) (*domain.User, error) {
	isAdmin := actorRole == domain.RoleAdmin
	if actorID != id && !isAdmin {
		return nil, ErrForbidden
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		updates["name"] = name
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Role != nil {
		if !isAdmin {
			return nil, ErrForbidden
		}
		role := domain.UserRole(*req.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: invalid role", ErrValidation)
		}
		updates["role"] = string(role)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.users.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	inUse, err := s.users.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrUserInUse
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, id int64, req ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.User, int64, error) {
	if q.Role != "" && !domain.UserRole(q.Role).Valid() {
		return nil, 0, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	return s.users.List(ctx, repository.UserFilter{
		Role:   q.Role,
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	})
}

func (s *Service) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	return s.users.ListTechnicians(ctx)
}

func (s *Service) Stats(ctx context.Context) (*repository.UserStats, error) {
	return s.users.Stats(ctx)
}
