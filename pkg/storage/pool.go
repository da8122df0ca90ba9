package storage

import (
	"context"

	"github.com/rvallim/raffle-allocation/pkg/models"
)

// PoolReader defines the lock-free read side of the number pool.
type PoolReader interface {
	// CountAssigned returns how many numbers are already bound for a raffle.
	// No side effects; may trail concurrent allocations slightly.
	CountAssigned(ctx context.Context, raffleID string) (int, error)

	// ListAssignedNumbersByOrder returns the numbers bound to one order,
	// in ascending order.
	ListAssignedNumbersByOrder(ctx context.Context, orderID string) ([]int, error)
}

// PoolWriter defines the highly-privileged draw-and-bind operation. It is the
// only creation path for assigned numbers and should only be exposed to the
// allocation engine.
type PoolWriter interface {
	// AllocateNumbers draws order.Quantity distinct unassigned numbers from
	// the raffle's pool and binds them to the order as a single atomic unit.
	// Two concurrent callers on the same raffle never receive overlapping
	// sets. Fails with ErrNoStock when too few numbers remain (nothing is
	// written), or ErrAlreadyAllocated when another caller already bound
	// numbers to this order.
	AllocateNumbers(ctx context.Context, order *models.Order, totalNumbers int) ([]int, error)
}

// PoolStore combines the reader and writer interfaces.
type PoolStore interface {
	PoolReader
	PoolWriter
}
