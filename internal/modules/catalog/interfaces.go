package catalog

import (
	"context"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	UpdateFields(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	HasOrders(ctx context.Context, serviceID int64) (bool, error)
	List(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Popular(ctx context.Context, limit int) ([]repository.PopularService, error)
}
