package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"flashfix/internal/domain"
)

type OrderLogRepository struct {
	db *gorm.DB
}

func NewOrderLogRepository(db *gorm.DB) *OrderLogRepository {
	return &OrderLogRepository{db: db}
}

type orderLogModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	OrderID    int64     `gorm:"column:order_id"`
	Action     string    `gorm:"column:action"`
	Notes      string    `gorm:"column:notes"`
	Images     string    `gorm:"column:images"`
	OperatorID int64     `gorm:"column:operator_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (orderLogModel) TableName() string { return "order_logs" }

func toDomainOrderLog(m orderLogModel) *domain.OrderLog {
	images := []string{}
	if m.Images != "" {
		// malformed payloads degrade to an empty list
		_ = json.Unmarshal([]byte(m.Images), &images)
	}

	return &domain.OrderLog{
		ID:         m.ID,
		OrderID:    m.OrderID,
		Action:     m.Action,
		Notes:      m.Notes,
		Images:     images,
		OperatorID: m.OperatorID,
		CreatedAt:  m.CreatedAt,
	}
}

// Append writes a standalone annotation row. Transition audit rows are
// written by OrderRepository inside the transition transaction instead.
func (r *OrderLogRepository) Append(ctx context.Context, l *domain.OrderLog) error {
	raw, err := json.Marshal(l.Images)
	if err != nil {
		return err
	}
	if l.Images == nil {
		raw = []byte("[]")
	}

	m := orderLogModel{
		OrderID:    l.OrderID,
		Action:     l.Action,
		Notes:      l.Notes,
		Images:     string(raw),
		OperatorID: l.OperatorID,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*l = *toDomainOrderLog(m)
	return nil
}

// OrderLogEntry is a log row joined with the operator's display name.
type OrderLogEntry struct {
	domain.OrderLog
	OperatorName string `json:"operator_name"`
}

type orderLogRow struct {
	orderLogModel
	OperatorName *string `gorm:"column:operator_name"`
}

func (r *OrderLogRepository) ListByOrder(ctx context.Context, orderID int64) ([]OrderLogEntry, error) {
	var rows []orderLogRow
	tx := r.db.WithContext(ctx).Table("order_logs ol").
		Select("ol.*, u.name AS operator_name").
		Joins("LEFT JOIN users u ON ol.operator_id = u.id").
		Where("ol.order_id = ?", orderID).
		Order("ol.created_at DESC").
		Scan(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]OrderLogEntry, 0, len(rows))
	for _, row := range rows {
		entry := OrderLogEntry{OrderLog: *toDomainOrderLog(row.orderLogModel)}
		if row.OperatorName != nil {
			entry.OperatorName = *row.OperatorName
		}
		out = append(out, entry)
	}
	return out, nil
}
