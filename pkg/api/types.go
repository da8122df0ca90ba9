// Package api defines the wire-level request and response types exposed by
// the HTTP surface. Domain models live in pkg/models; pkg/mapping converts
// between the two.
package api

import "time"

// NewRaffle is the request body for creating a raffle.
type NewRaffle struct {
	Name           string `json:"name"`
	TotalNumbers   int    `json:"total_numbers"`
	PricePerNumber int64  `json:"price_per_number"`
}

// Raffle is the external representation of a raffle and its pool progress.
type Raffle struct {
	Id             string    `json:"id"`
	Name           string    `json:"name"`
	TotalNumbers   int       `json:"total_numbers"`
	PricePerNumber int64     `json:"price_per_number"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// RaffleProgress reports sold/remaining counts for a raffle. Reads are
// lock-free and may trail concurrent allocations slightly.
type RaffleProgress struct {
	RaffleId  string `json:"raffle_id"`
	Total     int    `json:"total"`
	Sold      int    `json:"sold"`
	Remaining int    `json:"remaining"`
}

// NewOrder is the request body for creating an order.
type NewOrder struct {
	RaffleId      string  `json:"raffle_id"`
	Quantity      int     `json:"quantity"`
	BuyerName     string  `json:"buyer_name"`
	BuyerPhone    *string `json:"buyer_phone,omitempty"`
	PaymentMethod string  `json:"payment_method"`
	ClientTxRef   *string `json:"client_tx_ref,omitempty"`
}

// Order is the external representation of an order.
type Order struct {
	Id            string    `json:"id"`
	RaffleId      string    `json:"raffle_id"`
	Quantity      int       `json:"quantity"`
	TotalAmount   int64     `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	ClientTxRef   *string   `json:"client_tx_ref,omitempty"`
	BuyerName     string    `json:"buyer_name"`
	Status        string    `json:"status"`
	Numbers       []int     `json:"numbers,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConfirmRequest is the body of the client-side payment confirmation poll.
type ConfirmRequest struct {
	ClientTxRef  string  `json:"client_tx_ref"`
	ProviderTxId *string `json:"provider_tx_id,omitempty"`
}

// ConfirmResponse mirrors the shape consumed by the rendering layer.
type ConfirmResponse struct {
	Ok      bool   `json:"ok"`
	Status  string `json:"status"`
	OrderId string `json:"order_id,omitempty"`
	Numbers []int  `json:"numbers,omitempty"`
}

// RevertRequest is the body of the admin revert endpoint.
type RevertRequest struct {
	ToStatus string `json:"to_status"`
}

// WebhookAck is the acknowledgment body returned to the payment provider.
type WebhookAck struct {
	Ok bool `json:"ok"`
}
