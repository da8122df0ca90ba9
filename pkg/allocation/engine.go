// Package allocation implements the draw-and-bind core: given a paid order,
// bind exactly quantity unique numbers to it, exactly once, no matter how many
// times or how concurrently it is asked.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// Result is the outcome of an allocation call. AlreadyAssigned reports whether
// the numbers were bound by an earlier call; repeat calls return the same set.
type Result struct {
	OrderId         string
	RaffleId        string
	Numbers         []int
	AlreadyAssigned bool
}

// Store is the slice of the data layer the engine needs.
type Store interface {
	storage.OrderReader
	storage.RaffleStore
	storage.PoolStore
}

// Engine guarantees "paid implies allocated, and allocated implies done
// exactly once" for every order.
type Engine struct {
	Store Store
}

// NewEngine creates a new Engine.
func NewEngine(store Store) *Engine {
	return &Engine{Store: store}
}

// Allocate draws and binds numbers for a paid order.
//
// Repeat invocations (duplicate webhooks, client polls, manual retries) are
// safe no-ops returning the original set. Two racing invocations for the same
// order resolve to one draw: the loser observes the winner's numbers. When the
// pool cannot cover the order's quantity the order stays paid with zero
// numbers and ErrNoStock is surfaced for operator escalation; overselling
// never happens.
func (e *Engine) Allocate(ctx context.Context, orderID string) (*Result, error) {
	order, err := e.Store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.PAID {
		return nil, fmt.Errorf("order %s in status %s: %w", orderID, order.Status, storage.ErrOrderNotPaid)
	}

	existing, err := e.Store.ListAssignedNumbersByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if len(existing) > 0 {
		return &Result{
			OrderId:         order.Id,
			RaffleId:        order.RaffleId,
			Numbers:         existing,
			AlreadyAssigned: true,
		}, nil
	}

	raffle, err := e.Store.GetRaffle(ctx, order.RaffleId)
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle for allocation: %w", err)
	}

	numbers, err := e.Store.AllocateNumbers(ctx, order, raffle.TotalNumbers)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyAllocated) {
			// A concurrent caller won the draw between our existence check and
			// our bind. Their rows are the result.
			return e.readBackAssignment(ctx, order)
		}
		return nil, err
	}

	slog.Info("numbers allocated",
		"order_id", order.Id,
		"raffle_id", order.RaffleId,
		"quantity", order.Quantity,
	)

	return &Result{
		OrderId:  order.Id,
		RaffleId: order.RaffleId,
		Numbers:  numbers,
	}, nil
}

// readBackAssignment fetches the winner's number set after losing the bind
// race. The index read can trail the winner's write briefly, so an empty read
// is retried once against the engine's own idempotent path.
func (e *Engine) readBackAssignment(ctx context.Context, order *models.Order) (*Result, error) {
	for attempt := 0; attempt < 2; attempt++ {
		numbers, err := e.Store.ListAssignedNumbersByOrder(ctx, order.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to read back concurrent assignment: %w", err)
		}
		if len(numbers) > 0 {
			return &Result{
				OrderId:         order.Id,
				RaffleId:        order.RaffleId,
				Numbers:         numbers,
				AlreadyAssigned: true,
			}, nil
		}
	}
	return nil, fmt.Errorf("order %s marked allocated but numbers not yet readable", order.Id)
}
