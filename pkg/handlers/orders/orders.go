package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rvallim/raffle-allocation/pkg/api"
	"github.com/rvallim/raffle-allocation/pkg/dispatcher"
	"github.com/rvallim/raffle-allocation/pkg/gateway"
	"github.com/rvallim/raffle-allocation/pkg/mapping"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/scheduler"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// gatewayOrderTTL is how long a gateway-mediated order may stay unpaid before
// the expiration queue cancels it.
const gatewayOrderTTL = 2 * time.Hour

// OrdersHandler holds the dependencies for order-related handlers.
type OrdersHandler struct {
	Store      storage.Storage
	Dispatcher *dispatcher.Dispatcher
	Scheduler  scheduler.Scheduler
}

// NewOrdersHandler creates a new OrdersHandler.
func NewOrdersHandler(store storage.Storage, d *dispatcher.Dispatcher, s scheduler.Scheduler) *OrdersHandler {
	return &OrdersHandler{Store: store, Dispatcher: d, Scheduler: s}
}

// CreateOrder handles the logic for creating a new order against the active raffle.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var newOrder api.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&newOrder); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	domainOrder := mapping.ToDomainNewOrder(&newOrder)

	raffle, err := h.Store.GetRaffle(r.Context(), domainOrder.RaffleId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Raffle not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to load raffle: %v", err), http.StatusInternalServerError)
		}
		return
	}
	if raffle.Status != models.RaffleActive {
		http.Error(w, "Raffle is not open for orders", http.StatusConflict)
		return
	}

	domainOrder.TotalAmount = int64(domainOrder.Quantity) * raffle.PricePerNumber
	if domainOrder.PaymentMethod == models.PaymentGateway {
		domainOrder.ExpiresAt = time.Now().Add(gatewayOrderTTL)
	}

	createdOrder, err := h.Store.CreateOrder(r.Context(), domainOrder)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			log.Printf("ERROR: Failed to create order in store: %v\n", err)
			http.Error(w, fmt.Sprintf("Failed to create order: %v", err), http.StatusInternalServerError)
		}
		return
	}

	// Enqueue the expiration check after the order exists.
	if h.Scheduler != nil && createdOrder.PaymentMethod == models.PaymentGateway {
		delay := time.Until(createdOrder.ExpiresAt)
		if err := h.Scheduler.ScheduleExpiration(r.Context(), createdOrder, delay); err != nil {
			log.Printf("CRITICAL: order %s created but expiration not enqueued: %v", createdOrder.Id, err)
		}
	}

	apiOrder := mapping.ToApiOrder(createdOrder, nil)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(apiOrder); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// GetOrderById handles the logic for retrieving an order and its numbers.
func (h *OrdersHandler) GetOrderById(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	domainOrder, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to retrieve order: %v", err), http.StatusInternalServerError)
		}
		return
	}

	numbers, err := h.Store.ListAssignedNumbersByOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve numbers: %v", err), http.StatusInternalServerError)
		return
	}

	apiOrder := mapping.ToApiOrder(domainOrder, numbers)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(apiOrder); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// ConfirmPayment is the client-poll trigger: the buyer's browser lands back
// from the gateway and asks us to verify and allocate. The buyer never sees
// precise failure codes; terminal and transient conditions both render as a
// neutral processing state.
func (h *OrdersHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req api.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ClientTxRef == "" {
		http.Error(w, "client_tx_ref is required", http.StatusBadRequest)
		return
	}

	result, err := h.Dispatcher.ConfirmByReference(r.Context(), req.ClientTxRef)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Unknown transaction reference", http.StatusNotFound)
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			writeConfirmResponse(w, http.StatusServiceUnavailable, api.ConfirmResponse{Ok: false, Status: "processing"})
		case errors.Is(err, storage.ErrNoStock):
			// Paid but unfulfillable: operators get the alert, the buyer gets
			// a neutral state.
			log.Printf("CRITICAL: pool exhausted confirming reference %s: %v", req.ClientTxRef, err)
			writeConfirmResponse(w, http.StatusOK, api.ConfirmResponse{Ok: true, Status: "processing"})
		default:
			log.Printf("ERROR: failed to confirm reference %s: %v", req.ClientTxRef, err)
			http.Error(w, "Failed to confirm payment", http.StatusInternalServerError)
		}
		return
	}

	if !result.Approved {
		writeConfirmResponse(w, http.StatusOK, api.ConfirmResponse{
			Ok:      true,
			Status:  "processing",
			OrderId: result.OrderId,
		})
		return
	}

	writeConfirmResponse(w, http.StatusOK, api.ConfirmResponse{
		Ok:      true,
		Status:  string(result.Status),
		OrderId: result.OrderId,
		Numbers: result.Numbers,
	})
}

// GetRaffleProgress reports sold/remaining counts for progress displays.
func (h *OrdersHandler) GetRaffleProgress(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	raffle, err := h.Store.GetRaffle(r.Context(), raffleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Raffle not found", http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Failed to load raffle: %v", err), http.StatusInternalServerError)
		}
		return
	}

	sold, err := h.Store.CountAssigned(r.Context(), raffleID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to count assigned numbers: %v", err), http.StatusInternalServerError)
		return
	}

	progress := api.RaffleProgress{
		RaffleId:  raffle.Id,
		Total:     raffle.TotalNumbers,
		Sold:      sold,
		Remaining: raffle.TotalNumbers - sold,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(progress); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

func writeConfirmResponse(w http.ResponseWriter, status int, resp api.ConfirmResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("ERROR: failed to write confirm response: %v", err)
	}
}
