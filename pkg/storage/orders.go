package storage

import (
	"context"
	"time"

	"github.com/rvallim/raffle-allocation/pkg/models"
)

// OrderReader defines the interface for reading order data.
type OrderReader interface {
	// GetOrder retrieves an order by its ID. Returns ErrNotFound if it does not exist.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)

	// GetOrderByClientTxRef resolves the order that owns a client transaction
	// reference. Returns ErrNotFound when no order carries the reference.
	GetOrderByClientTxRef(ctx context.Context, clientTxRef string) (*models.Order, error)

	// GetUnallocatedPaidOrders retrieves orders that have been paid for longer
	// than maxAge but still have no numbers bound. Used by reconciliation.
	GetUnallocatedPaidOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error)
}

// OrderManager defines the interface for creating orders and driving their
// state machine. Every transition is safe to invoke more than once.
type OrderManager interface {
	// CreateOrder creates a new order. When the order carries a client
	// transaction reference and an order with that reference already exists,
	// the existing order is returned instead of a duplicate.
	CreateOrder(ctx context.Context, newOrder *models.Order) (*models.Order, error)

	// MarkOrderPaid transitions pending/in_progress to paid. Marking an
	// already-paid order succeeds without re-mutating it.
	MarkOrderPaid(ctx context.Context, orderID string) (*models.Order, error)

	// RevertOrder moves a paid or pending order to pending or cancelled and
	// releases any numbers bound to it back to the pool, as one atomic unit.
	RevertOrder(ctx context.Context, orderID string, toStatus models.OrderStatus) error

	// CancelIfUnpaid cancels an order only if it is still pending or
	// in_progress. A paid order is never touched. Used by expiration.
	CancelIfUnpaid(ctx context.Context, orderID string) error
}

// OrderStore combines the reader and manager interfaces.
type OrderStore interface {
	OrderReader
	OrderManager
}
