package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	args := m.Called(ctx, s)
	if s != nil {
		s.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServiceRepository) HasOrders(ctx context.Context, serviceID int64) (bool, error) {
	args := m.Called(ctx, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockServiceRepository) List(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Service), args.Get(1).(int64), args.Error(2)
}

func (m *MockServiceRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockServiceRepository) Popular(ctx context.Context, limit int) ([]repository.PopularService, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]repository.PopularService), args.Error(1)
}

func TestService_Create_DefaultsToActive(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo)
	created, err := svc.Create(context.Background(), CreateServiceRequest{
		Name:      "Screen Replacement",
		Category:  "phone",
		BasePrice: 299,
	})

	assert.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Equal(t, int64(999), created.ID)
}

func TestService_Create_NegativePrice(t *testing.T) {
	svc := NewService(new(MockServiceRepository))

	_, err := svc.Create(context.Background(), CreateServiceRequest{
		Name:      "Screen Replacement",
		Category:  "phone",
		BasePrice: -1,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Delete_BlockedWhenOrdersExist(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("HasOrders", mock.Anything, int64(3)).Return(true, nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), 3)

	assert.ErrorIs(t, err, ErrServiceInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete_Success(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("HasOrders", mock.Anything, int64(3)).Return(false, nil)
	repo.On("Delete", mock.Anything, int64(3)).Return(nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), 3)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Update_NothingToUpdate(t *testing.T) {
	svc := NewService(new(MockServiceRepository))

	_, err := svc.Update(context.Background(), 3, UpdateServiceRequest{})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Update_NotFound(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("UpdateFields", mock.Anything, int64(3), mock.Anything).Return(gorm.ErrRecordNotFound)

	name := "Renamed"
	svc := NewService(repo)
	_, err := svc.Update(context.Background(), 3, UpdateServiceRequest{Name: &name})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Popular_ClampsLimit(t *testing.T) {
	repo := new(MockServiceRepository)
	repo.On("Popular", mock.Anything, defaultPopularLimit).Return([]repository.PopularService{}, nil)

	svc := NewService(repo)
	_, err := svc.Popular(context.Background(), 500)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
