package order

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

// Mock repositories

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *domain.Order, operatorID int64) error {
	args := m.Called(ctx, o, operatorID)
	if o != nil {
		o.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetDetail(ctx context.Context, id int64) (*repository.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OrderDetail), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]repository.OrderListItem, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]repository.OrderListItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Transition(ctx context.Context, p repository.TransitionParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateDetails(ctx context.Context, orderID int64, updates map[string]any, operatorID int64) error {
	args := m.Called(ctx, orderID, updates, operatorID)
	return args.Error(0)
}

func (m *MockOrderRepository) ListPayments(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockOrderRepository) ListReviews(ctx context.Context, orderID int64) ([]domain.Review, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Append(ctx context.Context, l *domain.OrderLog) error {
	args := m.Called(ctx, l)
	if l != nil {
		l.ID = 555
	}
	return args.Error(0)
}

func (m *MockLogRepository) ListByOrder(ctx context.Context, orderID int64) ([]repository.OrderLogEntry, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]repository.OrderLogEntry), args.Error(1)
}

type MockServiceCatalog struct {
	mock.Mock
}

func (m *MockServiceCatalog) GetActiveBasePrice(ctx context.Context, id int64) (float64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(float64), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOrderCreated(o *domain.Order) {
	m.Called(o)
}

func (m *MockNotifier) NotifyOrderUpdated(o *domain.Order, action string) {
	m.Called(o, action)
}

func newTestService() (*Service, *MockOrderRepository, *MockLogRepository, *MockServiceCatalog, *MockUserDirectory, *MockNotifier) {
	orders := new(MockOrderRepository)
	logs := new(MockLogRepository)
	catalog := new(MockServiceCatalog)
	users := new(MockUserDirectory)
	notifs := new(MockNotifier)
	return NewService(orders, logs, catalog, users, notifs), orders, logs, catalog, users, notifs
}

func TestService_Create_Success(t *testing.T) {
	svc, orders, _, catalog, _, notifs := newTestService()

	catalog.On("GetActiveBasePrice", mock.Anything, int64(3)).Return(299.0, nil)
	orders.On("Create", mock.Anything, mock.Anything, int64(42)).Return(nil)
	notifs.On("NotifyOrderCreated", mock.Anything).Return()

	o, err := svc.Create(context.Background(), 42, CreateOrderRequest{
		ServiceID:        3,
		DeviceType:       "phone",
		DeviceModel:      "iPhone 13",
		IssueDescription: "cracked screen",
		ContactPhone:     "13812345678",
	})

	assert.NoError(t, err)
	assert.NotNil(t, o)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, 299.0, o.EstimatedPrice)
	assert.Equal(t, "normal", o.UrgencyLevel)
	assert.Equal(t, "Pending confirmation", o.ContactAddress)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "XGX"))
	orders.AssertExpectations(t)
	notifs.AssertExpectations(t)
}

func TestService_Create_KeepsProvidedAddress(t *testing.T) {
	svc, orders, _, catalog, _, notifs := newTestService()

	catalog.On("GetActiveBasePrice", mock.Anything, int64(3)).Return(299.0, nil)
	orders.On("Create", mock.Anything, mock.Anything, int64(42)).Return(nil)
	notifs.On("NotifyOrderCreated", mock.Anything).Return()

	o, err := svc.Create(context.Background(), 42, CreateOrderRequest{
		ServiceID:        3,
		DeviceType:       "phone",
		IssueDescription: "cracked screen",
		ContactPhone:     "13812345678",
		ContactAddress:   "88 Nanjing Rd",
	})

	assert.NoError(t, err)
	assert.Equal(t, "88 Nanjing Rd", o.ContactAddress)
}

func TestService_Create_InactiveService(t *testing.T) {
	svc, _, _, catalog, _, _ := newTestService()

	catalog.On("GetActiveBasePrice", mock.Anything, int64(3)).Return(0.0, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), 42, CreateOrderRequest{
		ServiceID:        3,
		DeviceType:       "phone",
		IssueDescription: "cracked screen",
		ContactPhone:     "13812345678",
	})

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_Create_InvalidUrgency(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 42, CreateOrderRequest{
		ServiceID:        3,
		DeviceType:       "phone",
		IssueDescription: "cracked screen",
		ContactPhone:     "13812345678",
		UrgencyLevel:     "asap",
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Claim_Success(t *testing.T) {
	svc, orders, _, _, _, notifs := newTestService()

	pending := &domain.Order{ID: 7, UserID: 42, Status: domain.OrderPending}
	techID := int64(11)
	claimed := &domain.Order{ID: 7, UserID: 42, TechnicianID: &techID, Status: domain.OrderInProgress}

	orders.On("GetByID", mock.Anything, int64(7)).Return(pending, nil).Once()
	orders.On("Transition", mock.Anything, mock.MatchedBy(func(p repository.TransitionParams) bool {
		return p.OrderID == 7 &&
			len(p.Expect) == 1 && p.Expect[0] == domain.OrderPending &&
			p.SetStatus == domain.OrderInProgress &&
			p.SetTech != nil && *p.SetTech == techID &&
			p.LogAction == domain.LogActionClaim
	})).Return(nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(claimed, nil).Once()
	notifs.On("NotifyOrderUpdated", claimed, domain.LogActionClaim).Return()

	o, err := svc.Claim(context.Background(), techID, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderInProgress, o.Status)
	orders.AssertExpectations(t)
}

func TestService_Claim_LostRace(t *testing.T) {
	svc, orders, _, _, _, notifs := newTestService()

	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{ID: 7, Status: domain.OrderPending}, nil)
	orders.On("Transition", mock.Anything, mock.Anything).Return(repository.ErrNoRowsAffected)

	_, err := svc.Claim(context.Background(), 11, 7)

	assert.ErrorIs(t, err, ErrConflict)
	// a lost race must not announce anything
	notifs.AssertNotCalled(t, "NotifyOrderUpdated", mock.Anything, mock.Anything)
}

func TestService_Accept_GuardsTechnician(t *testing.T) {
	svc, orders, _, _, _, _ := newTestService()

	assigned := int64(11)
	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{
		ID: 7, TechnicianID: &assigned, Status: domain.OrderPendingAcceptance,
	}, nil)
	// the other technician's guarded update matches no row
	orders.On("Transition", mock.Anything, mock.MatchedBy(func(p repository.TransitionParams) bool {
		return p.ExpectTech != nil && *p.ExpectTech == int64(12)
	})).Return(repository.ErrNoRowsAffected)

	_, err := svc.Accept(context.Background(), 12, 7)

	assert.ErrorIs(t, err, ErrConflict)
}

func TestService_Assign_TechnicianNotFound(t *testing.T) {
	svc, _, _, _, users, _ := newTestService()

	users.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Assign(context.Background(), 1, 7, 99)

	assert.ErrorIs(t, err, ErrTechnicianNotFound)
}

func TestService_Assign_RejectsNonTechnician(t *testing.T) {
	svc, _, _, _, users, _ := newTestService()

	users.On("GetByID", mock.Anything, int64(99)).Return(&domain.User{ID: 99, Role: domain.RoleUser}, nil)

	_, err := svc.Assign(context.Background(), 1, 7, 99)

	assert.ErrorIs(t, err, ErrTechnicianNotFound)
}

func TestService_Transfer_Abandon(t *testing.T) {
	svc, orders, _, _, _, notifs := newTestService()

	techID := int64(11)
	held := &domain.Order{ID: 7, TechnicianID: &techID, Status: domain.OrderInProgress}
	released := &domain.Order{ID: 7, Status: domain.OrderPending}

	orders.On("GetByID", mock.Anything, int64(7)).Return(held, nil).Once()
	orders.On("Transition", mock.Anything, mock.MatchedBy(func(p repository.TransitionParams) bool {
		return p.ClearTech &&
			p.SetStatus == domain.OrderPending &&
			p.ExpectTech != nil && *p.ExpectTech == techID &&
			p.LogAction == domain.LogActionAbandon
	})).Return(nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(released, nil).Once()
	notifs.On("NotifyOrderUpdated", released, domain.LogActionAbandon).Return()

	o, err := svc.Transfer(context.Background(), techID, 7, nil)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Nil(t, o.TechnicianID)
}

func TestService_Transfer_GuardsOnlyTechnician(t *testing.T) {
	svc, orders, _, _, users, notifs := newTestService()

	techID := int64(11)
	targetID := int64(12)
	// transfer away a completed order: no status precondition applies
	held := &domain.Order{ID: 7, TechnicianID: &techID, Status: domain.OrderCompleted}
	handed := &domain.Order{ID: 7, TechnicianID: &targetID, Status: domain.OrderPendingAcceptance}

	users.On("GetByID", mock.Anything, targetID).Return(&domain.User{ID: targetID, Role: domain.RoleTechnician}, nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(held, nil).Once()
	orders.On("Transition", mock.Anything, mock.MatchedBy(func(p repository.TransitionParams) bool {
		return len(p.Expect) == 0 &&
			p.ExpectTech != nil && *p.ExpectTech == techID &&
			p.SetTech != nil && *p.SetTech == targetID &&
			p.SetStatus == domain.OrderPendingAcceptance &&
			p.LogAction == domain.LogActionTransfer
	})).Return(nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(handed, nil).Once()
	notifs.On("NotifyOrderUpdated", handed, domain.LogActionTransfer).Return()

	o, err := svc.Transfer(context.Background(), techID, 7, &targetID)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderPendingAcceptance, o.Status)
	orders.AssertExpectations(t)
}

func TestService_Transfer_ToSelf(t *testing.T) {
	svc, orders, _, _, users, _ := newTestService()

	techID := int64(11)
	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{
		ID: 7, TechnicianID: &techID, Status: domain.OrderInProgress,
	}, nil)
	users.On("GetByID", mock.Anything, techID).Return(&domain.User{ID: techID, Role: domain.RoleTechnician}, nil)

	_, err := svc.Transfer(context.Background(), techID, 7, &techID)

	assert.ErrorIs(t, err, ErrTechnicianNotFound)
}

func TestService_UpdateStatus_CustomerCancelsOwnOrder(t *testing.T) {
	svc, orders, _, _, _, notifs := newTestService()

	own := &domain.Order{ID: 7, UserID: 42, Status: domain.OrderPending}
	cancelled := &domain.Order{ID: 7, UserID: 42, Status: domain.OrderCancelled}

	orders.On("GetByID", mock.Anything, int64(7)).Return(own, nil).Once()
	orders.On("Transition", mock.Anything, mock.MatchedBy(func(p repository.TransitionParams) bool {
		// customer cancels get a non-terminal status guard
		return p.SetStatus == domain.OrderCancelled && len(p.Expect) == 4
	})).Return(nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(cancelled, nil).Once()
	notifs.On("NotifyOrderUpdated", cancelled, domain.LogActionStatusChange).Return()

	o, err := svc.UpdateStatus(context.Background(), 42, domain.RoleUser, 7, domain.OrderCancelled)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
	orders.AssertExpectations(t)
}

func TestService_UpdateStatus_CustomerCannotTouchOthersOrder(t *testing.T) {
	svc, orders, _, _, _, _ := newTestService()

	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{
		ID: 7, UserID: 1, Status: domain.OrderPending,
	}, nil)

	_, err := svc.UpdateStatus(context.Background(), 42, domain.RoleUser, 7, domain.OrderCancelled)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateStatus_CustomerCannotComplete(t *testing.T) {
	svc, orders, _, _, _, _ := newTestService()

	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{
		ID: 7, UserID: 42, Status: domain.OrderInProgress,
	}, nil)

	_, err := svc.UpdateStatus(context.Background(), 42, domain.RoleUser, 7, domain.OrderCompleted)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestService_UpdateStatus_InvalidStatus(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), 42, domain.RoleAdmin, 7, domain.OrderStatus("shipped"))

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_UpdateDetails_NothingToUpdate(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.UpdateDetails(context.Background(), 11, 7, UpdateDetailsRequest{})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_UpdateDetails_Success(t *testing.T) {
	svc, orders, _, _, _, _ := newTestService()

	diagnosis := "water damage on the logic board"
	price := 450.0
	updated := &domain.Order{ID: 7, Diagnosis: &diagnosis, ActualPrice: &price, Status: domain.OrderInProgress}

	orders.On("UpdateDetails", mock.Anything, int64(7), mock.MatchedBy(func(u map[string]any) bool {
		return u["diagnosis"] == diagnosis && u["actual_price"] == price
	}), int64(11)).Return(nil)
	orders.On("GetByID", mock.Anything, int64(7)).Return(updated, nil)

	o, err := svc.UpdateDetails(context.Background(), 11, 7, UpdateDetailsRequest{
		Diagnosis:   &diagnosis,
		ActualPrice: &price,
	})

	assert.NoError(t, err)
	assert.Equal(t, &price, o.ActualPrice)
}

func TestService_AddLog_RequiresNotes(t *testing.T) {
	svc, _, _, _, _, _ := newTestService()

	_, err := svc.AddLog(context.Background(), 11, 7, AddLogRequest{Notes: "   "})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_AddLog_Success(t *testing.T) {
	svc, orders, logs, _, _, _ := newTestService()

	orders.On("GetByID", mock.Anything, int64(7)).Return(&domain.Order{ID: 7}, nil)
	logs.On("Append", mock.Anything, mock.MatchedBy(func(l *domain.OrderLog) bool {
		return l.OrderID == 7 && l.Action == domain.LogActionNote && l.OperatorID == 11
	})).Return(nil)

	l, err := svc.AddLog(context.Background(), 11, 7, AddLogRequest{Notes: "replaced the screen"})

	assert.NoError(t, err)
	assert.Equal(t, int64(555), l.ID)
}

func TestService_List_ScopesByRole(t *testing.T) {
	svc, orders, _, _, _, _ := newTestService()

	orders.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.UserID == 42 && f.TechnicianID == 0 && !f.Unclaimed
	})).Return([]repository.OrderListItem{}, int64(0), nil).Once()

	_, _, err := svc.List(context.Background(), 42, domain.RoleUser, ListQuery{Page: 1, Limit: 10})
	assert.NoError(t, err)

	orders.On("List", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.Unclaimed && f.UserID == 0 && f.TechnicianID == 0
	})).Return([]repository.OrderListItem{}, int64(0), nil).Once()

	_, _, err = svc.List(context.Background(), 11, domain.RoleTechnician, ListQuery{View: "unclaimed", Page: 1, Limit: 10})
	assert.NoError(t, err)

	orders.AssertExpectations(t)
}
