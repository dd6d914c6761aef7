package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id int64, updates map[string]any) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Stats(ctx context.Context) (*repository.UserStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(*repository.UserStats), args.Error(1)
}

func (m *MockUserRepository) HasOrders(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestService_Create_StaffAccount(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByPhone", mock.Anything, "13812345678").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo)
	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Finance Chen",
		Phone:    "13812345678",
		Password: "secret1",
		Role:     "finance",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleFinance, u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestService_Create_InvalidRole(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Nobody",
		Phone:    "13812345678",
		Password: "secret1",
		Role:     "superuser",
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Get_SelfAllowed(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7}, nil)

	svc := NewService(repo)
	u, err := svc.Get(context.Background(), 7, domain.RoleUser, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
}

func TestService_Get_OtherUserForbidden(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	_, err := svc.Get(context.Background(), 7, domain.RoleUser, 8)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Get_AdminSeesAnyone(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.User{ID: 8}, nil)

	svc := NewService(repo)
	u, err := svc.Get(context.Background(), 1, domain.RoleAdmin, 8)

	assert.NoError(t, err)
	assert.Equal(t, int64(8), u.ID)
}

func TestService_Update_RoleChangeRequiresAdmin(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	role := "admin"
	_, err := svc.Update(context.Background(), 7, domain.RoleUser, 7, UpdateUserRequest{Role: &role})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_Delete_Self(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	err := svc.Delete(context.Background(), 1, 1)

	assert.ErrorIs(t, err, ErrSelfDelete)
}

func TestService_Delete_BlockedWhenOrdersExist(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.User{ID: 8}, nil)
	repo.On("HasOrders", mock.Anything, int64(8)).Return(true, nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), 1, 8)

	assert.ErrorIs(t, err, ErrUserInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Delete_Success(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, int64(8)).Return(&domain.User{ID: 8}, nil)
	repo.On("HasOrders", mock.Anything, int64(8)).Return(false, nil)
	repo.On("Delete", mock.Anything, int64(8)).Return(nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), 1, 8)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_ResetPassword_TooShort(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	err := svc.ResetPassword(context.Background(), 8, ResetPasswordRequest{NewPassword: "abc"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_List_InvalidRoleFilter(t *testing.T) {
	svc := NewService(new(MockUserRepository))

	_, _, err := svc.List(context.Background(), ListQuery{Role: "wizard", Page: 1, Limit: 10})

	assert.ErrorIs(t, err, ErrValidation)
}
