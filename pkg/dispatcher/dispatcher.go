// Package dispatcher funnels every allocation trigger (webhook push, client
// confirmation poll, admin override) through one markPaid+allocate pair, so
// the idempotency contract is implemented once instead of per entry point.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rvallim/raffle-allocation/pkg/allocation"
	"github.com/rvallim/raffle-allocation/pkg/gateway"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/notify"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// Result is the common outcome shape of every trigger.
type Result struct {
	OrderId         string
	Status          models.OrderStatus
	Numbers         []int
	AlreadyAssigned bool
	// Approved is false when a confirmation poll found the transaction not yet
	// approved; nothing was mutated in that case.
	Approved bool
}

// Engine is the slice of the allocation engine used by the dispatcher.
type Engine interface {
	Allocate(ctx context.Context, orderID string) (*allocation.Result, error)
}

// Dispatcher wires the three triggers to the engine. Operator identity and
// gateway confirmations arrive as explicit parameters, never ambient state.
type Dispatcher struct {
	Store     storage.OrderStore
	Engine    Engine
	Gateway   gateway.Client
	Publisher notify.Publisher
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(store storage.OrderStore, engine Engine, gw gateway.Client, publisher notify.Publisher) *Dispatcher {
	return &Dispatcher{Store: store, Engine: engine, Gateway: gw, Publisher: publisher}
}

// HandleWebhook processes an already-authenticated, already-normalized
// provider notification. A non-approved notification mutates nothing.
func (d *Dispatcher) HandleWebhook(ctx context.Context, conf *gateway.Confirmation) (*Result, error) {
	if !conf.Approved {
		slog.Info("webhook not actionable", "raw_status", conf.RawStatus, "client_tx_ref", conf.ClientTxRef)
		return &Result{Approved: false}, nil
	}

	order, err := d.Store.GetOrderByClientTxRef(ctx, conf.ClientTxRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// An approved payment we cannot correlate must never conjure an
			// order out of thin air.
			return nil, fmt.Errorf("no order for reference %s: %w", conf.ClientTxRef, gateway.ErrUnresolvedReference)
		}
		return nil, err
	}

	return d.settle(ctx, order.Id)
}

// ConfirmByReference is the client-poll trigger. It asks the provider
// directly; the buyer's return URL is never treated as proof of payment.
func (d *Dispatcher) ConfirmByReference(ctx context.Context, clientTxRef string) (*Result, error) {
	conf, err := d.Gateway.GetTransactionStatus(ctx, clientTxRef)
	if err != nil {
		return nil, err
	}

	order, err := d.Store.GetOrderByClientTxRef(ctx, clientTxRef)
	if err != nil {
		return nil, err
	}

	if !conf.Approved {
		return &Result{
			OrderId:  order.Id,
			Status:   order.Status,
			Approved: false,
		}, nil
	}

	return d.settle(ctx, order.Id)
}

// AdminMarkPaid is the manual override trigger. The operator asserts payment
// was received out of band; the gateway is bypassed entirely.
func (d *Dispatcher) AdminMarkPaid(ctx context.Context, operator, orderID string) (*Result, error) {
	slog.Info("admin override", "operator", operator, "order_id", orderID)
	return d.settle(ctx, orderID)
}

// settle is the shared markPaid+allocate pair. Both halves are idempotent, so
// the composition is safe to invoke arbitrarily many times.
func (d *Dispatcher) settle(ctx context.Context, orderID string) (*Result, error) {
	order, err := d.Store.MarkOrderPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}

	res, err := d.Engine.Allocate(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !res.AlreadyAssigned && d.Publisher != nil {
		msg := notify.Message{
			Type: notify.MessageTypeAllocation,
			Payload: notify.AllocationPayload{
				OrderID:  res.OrderId,
				RaffleID: res.RaffleId,
				Numbers:  res.Numbers,
			},
		}
		if err := d.Publisher.Publish(ctx, msg); err != nil {
			slog.Error("failed to publish allocation message", "order_id", res.OrderId, "error", err)
		}
	}

	return &Result{
		OrderId:         order.Id,
		Status:          models.PAID,
		Numbers:         res.Numbers,
		AlreadyAssigned: res.AlreadyAssigned,
		Approved:        true,
	}, nil
}
