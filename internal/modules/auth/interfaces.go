package auth

import (
	"context"
	"time"

	"flashfix/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.User, error)
	GetByPhoneAndRole(ctx context.Context, phone string, role domain.UserRole) (*domain.User, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]any) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}
