package mapping

import (
	"github.com/rvallim/raffle-allocation/pkg/api"
	"github.com/rvallim/raffle-allocation/pkg/models"
)

// ToApiOrder converts a domain Order model to an API Order model. The bound
// numbers are attached separately because they live in their own table.
func ToApiOrder(order *models.Order, numbers []int) *api.Order {
	out := &api.Order{
		Id:            order.Id,
		RaffleId:      order.RaffleId,
		Quantity:      order.Quantity,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		BuyerName:     order.BuyerName,
		Status:        string(order.Status),
		Numbers:       numbers,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.ClientTxRef != "" {
		ref := order.ClientTxRef
		out.ClientTxRef = &ref
	}
	return out
}

// ToDomainNewOrder converts an API NewOrder model to a domain Order model.
// Server-side fields (id, status, timestamps) are filled by the store.
func ToDomainNewOrder(newOrder *api.NewOrder) *models.Order {
	order := &models.Order{
		RaffleId:      newOrder.RaffleId,
		Quantity:      newOrder.Quantity,
		BuyerName:     newOrder.BuyerName,
		PaymentMethod: newOrder.PaymentMethod,
	}
	if newOrder.BuyerPhone != nil {
		order.BuyerPhone = *newOrder.BuyerPhone
	}
	if newOrder.ClientTxRef != nil {
		order.ClientTxRef = *newOrder.ClientTxRef
	}
	return order
}

// ToApiRaffle converts a domain Raffle model to an API Raffle model.
func ToApiRaffle(raffle *models.Raffle) *api.Raffle {
	return &api.Raffle{
		Id:             raffle.Id,
		Name:           raffle.Name,
		TotalNumbers:   raffle.TotalNumbers,
		PricePerNumber: raffle.PricePerNumber,
		Status:         string(raffle.Status),
		CreatedAt:      raffle.CreatedAt,
	}
}

// ToDomainNewRaffle converts an API NewRaffle model to a domain Raffle model.
func ToDomainNewRaffle(newRaffle *api.NewRaffle) *models.Raffle {
	return &models.Raffle{
		Name:           newRaffle.Name,
		TotalNumbers:   newRaffle.TotalNumbers,
		PricePerNumber: newRaffle.PricePerNumber,
	}
}
