package domain

import (
	"context"
	"time"
)

// Order status constants
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
	OrderStatusExpired = "expired"
)

// Order records one completed checkout hand-off: which plans were sent to the
// payment collaborator and how settlement is progressing. The cart itself is
// cleared once the order exists; the order is the durable trace.
type Order struct {
	OrderNo        string    `bson:"_id,omitempty" json:"order_no"`
	UserID         string    `bson:"user_id,omitempty" json:"user_id"`
	PlanIDs        []string  `bson:"plan_ids,omitempty" json:"plan_ids"`
	TransactionIDs []string  `bson:"transaction_ids,omitempty" json:"transaction_ids"`
	Amount         float64   `bson:"amount,omitempty" json:"amount"` // major units
	Asset          string    `bson:"asset,omitempty" json:"asset"`
	Status         string    `bson:"status,omitempty" json:"status"`
	CreatedAt      time.Time `bson:"created_at,omitempty" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at,omitempty" json:"updated_at"`
}

// OrderRepository defines operations for managing orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]*Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderNo string, status string) error
}
