package models

import (
	"time"
)

// RaffleStatus defines the possible states of a raffle.
type RaffleStatus string

const (
	RaffleActive   RaffleStatus = "active"
	RafflePaused   RaffleStatus = "paused"
	RaffleFinished RaffleStatus = "finished"
)

// OrderStatus defines the possible states of an order.
type OrderStatus string

const (
	PENDING     OrderStatus = "pending"
	IN_PROGRESS OrderStatus = "in_progress"
	PAID        OrderStatus = "paid"
	CANCELLED   OrderStatus = "cancelled"
)

// AllocationState tracks whether an order's numbers have been drawn and bound.
// It is the single per-order marker that serializes concurrent allocation
// attempts for the same order.
type AllocationState string

const (
	AllocationNone AllocationState = "none"
	AllocationDone AllocationState = "done"
)

// Payment methods accepted on an order.
const (
	PaymentGateway  = "gateway"
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"
)

// Raffle represents the number pool definition for a single raffle.
// Numbers occupy the integer domain [1, TotalNumbers].
type Raffle struct {
	Id             string       `dynamodbav:"id"`
	Name           string       `dynamodbav:"name"`
	TotalNumbers   int          `dynamodbav:"total_numbers"`
	PricePerNumber int64        `dynamodbav:"price_per_number"`
	Status         RaffleStatus `dynamodbav:"status"`
	CreatedAt      time.Time    `dynamodbav:"created_at"`
}

// Order represents the internal domain model for a purchase request.
// Quantity is fixed at creation and never changes.
type Order struct {
	Id            string          `dynamodbav:"id"`
	RaffleId      string          `dynamodbav:"raffle_id"`
	Quantity      int             `dynamodbav:"quantity"`
	TotalAmount   int64           `dynamodbav:"total_amount"`
	PaymentMethod string          `dynamodbav:"payment_method"`
	ClientTxRef   string          `dynamodbav:"client_tx_ref,omitempty"`
	BuyerName     string          `dynamodbav:"buyer_name"`
	BuyerPhone    string          `dynamodbav:"buyer_phone,omitempty"`
	Status        OrderStatus     `dynamodbav:"status"`
	Allocation    AllocationState `dynamodbav:"allocation"`
	CreatedAt     time.Time       `dynamodbav:"created_at"`
	UpdatedAt     time.Time       `dynamodbav:"updated_at"`
	ExpiresAt     time.Time       `dynamodbav:"expires_at,omitempty"`
}

// AssignedNumber binds one raffle number to one order. The (raffle_id, number)
// composite key is the uniqueness constraint that makes double-binding
// impossible: a number exists at most once per raffle.
type AssignedNumber struct {
	RaffleId   string    `dynamodbav:"raffle_id"`
	Number     int       `dynamodbav:"number"`
	OrderId    string    `dynamodbav:"order_id"`
	AssignedAt time.Time `dynamodbav:"assigned_at"`
}
