package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rvallim/raffle-allocation/pkg/api"
	"github.com/rvallim/raffle-allocation/pkg/dispatcher"
	"github.com/rvallim/raffle-allocation/pkg/mapping"
	"github.com/rvallim/raffle-allocation/pkg/middleware"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// AdminHandler holds the dependencies for operator-facing handlers. Unlike the
// buyer surface, admins get precise error codes.
type AdminHandler struct {
	Store      storage.Storage
	Dispatcher *dispatcher.Dispatcher
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store storage.Storage, d *dispatcher.Dispatcher) *AdminHandler {
	return &AdminHandler{Store: store, Dispatcher: d}
}

// CreateRaffle handles the logic for creating a new raffle.
func (h *AdminHandler) CreateRaffle(w http.ResponseWriter, r *http.Request) {
	var newRaffle api.NewRaffle
	if err := json.NewDecoder(r.Body).Decode(&newRaffle); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	created, err := h.Store.CreateRaffle(r.Context(), mapping.ToDomainNewRaffle(&newRaffle))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			log.Printf("ERROR: Failed to create raffle in store: %v\n", err)
			http.Error(w, fmt.Sprintf("Failed to create raffle: %v", err), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(mapping.ToApiRaffle(created)); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// MarkOrderPaid is the manual override trigger: an operator verified a cash or
// transfer payment out of band and settles the order by hand.
func (h *AdminHandler) MarkOrderPaid(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	operator := middleware.OperatorFromContext(r.Context())

	result, err := h.Dispatcher.AdminMarkPaid(r.Context(), operator, orderID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrOrderNotPayable):
			http.Error(w, "Order is not in a payable state", http.StatusConflict)
		case errors.Is(err, storage.ErrNoStock):
			http.Error(w, "Not enough numbers left in the pool", http.StatusConflict)
		default:
			log.Printf("ERROR: admin mark-paid failed for order %s: %v", orderID, err)
			http.Error(w, "Failed to mark order paid", http.StatusInternalServerError)
		}
		return
	}

	resp := api.ConfirmResponse{
		Ok:      true,
		Status:  string(result.Status),
		OrderId: result.OrderId,
		Numbers: result.Numbers,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// RevertOrder moves an order back to pending or cancels it, releasing any
// numbers it held in the same transaction.
func (h *AdminHandler) RevertOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	operator := middleware.OperatorFromContext(r.Context())

	var req api.RevertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	toStatus := models.OrderStatus(req.ToStatus)
	log.Printf("INFO: operator %s reverting order %s to %s", operator, orderID, toStatus)

	if err := h.Store.RevertOrder(r.Context(), orderID, toStatus); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrOrderNotRevertible):
			http.Error(w, "Order cannot be reverted from its current state", http.StatusConflict)
		default:
			log.Printf("ERROR: revert failed for order %s: %v", orderID, err)
			http.Error(w, "Failed to revert order", http.StatusInternalServerError)
		}
		return
	}

	reverted, err := h.Store.GetOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve reverted order: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(mapping.ToApiOrder(reverted, nil)); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
