package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

const defaultPopularLimit = 6

type Service struct {
	services ServiceRepository
}

func NewService(services ServiceRepository) *Service {
	return &Service{services: services}
}

func (s *Service) Create(ctx context.Context, req CreateServiceRequest) (*domain.Service, error) {
	if req.BasePrice < 0 {
		return nil, fmt.Errorf("%w: base price cannot be negative", ErrValidation)
	}

	svc := &domain.Service{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		EstimatedDuration: req.EstimatedDuration,
		IsActive:          true,
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return svc, nil
}

// List defaults to active services for anonymous callers; staff can pass
// includeInactive to see the whole catalog.
func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Service, int64, error) {
	return s.services.List(ctx, repository.ServiceFilter{
		Category: q.Category,
		IsActive: q.IsActive,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
	})
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.services.Categories(ctx)
}

func (s *Service) Popular(ctx context.Context, limit int) ([]repository.PopularService, error) {
	if limit < 1 || limit > 50 {
		limit = defaultPopularLimit
	}
	return s.services.Popular(ctx, limit)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 0 {
			return nil, fmt.Errorf("%w: base price cannot be negative", ErrValidation)
		}
		updates["base_price"] = *req.BasePrice
	}
	if req.EstimatedDuration != nil {
		updates["estimated_duration"] = *req.EstimatedDuration
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.services.UpdateFields(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.services.GetByID(ctx, id)
}

// Delete removes a service unless orders reference it; deactivate instead of
// deleting to retire a service with history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	inUse, err := s.services.HasOrders(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrServiceInUse
	}

	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
