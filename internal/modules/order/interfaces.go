package order

import (
	"context"

	"flashfix/internal/domain"
	"flashfix/internal/repository"
)

// OrderRepository defines the persistence operations the lifecycle needs.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order, operatorID int64) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetDetail(ctx context.Context, id int64) (*repository.OrderDetail, error)
	List(ctx context.Context, f repository.OrderFilter) ([]repository.OrderListItem, int64, error)
	Transition(ctx context.Context, p repository.TransitionParams) error
	UpdateDetails(ctx context.Context, orderID int64, updates map[string]any, operatorID int64) error
	ListPayments(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListReviews(ctx context.Context, orderID int64) ([]domain.Review, error)
}

type LogRepository interface {
	Append(ctx context.Context, l *domain.OrderLog) error
	ListByOrder(ctx context.Context, orderID int64) ([]repository.OrderLogEntry, error)
}

// ServiceCatalog resolves the base price of an active catalog entry.
type ServiceCatalog interface {
	GetActiveBasePrice(ctx context.Context, id int64) (float64, error)
}

// UserDirectory looks up assignment and transfer targets.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier pushes best-effort order events to connected clients. Delivery is
// never part of transition atomicity.
type Notifier interface {
	NotifyOrderCreated(o *domain.Order)
	NotifyOrderUpdated(o *domain.Order, action string)
}
