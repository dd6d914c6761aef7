package user

import (
	"context"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]any) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error)
	ListTechnicians(ctx context.Context) ([]domain.User, error)
	Stats(ctx context.Context) (*repository.UserStats, error)
	HasOrders(ctx context.Context, userID int64) (bool, error)
}
