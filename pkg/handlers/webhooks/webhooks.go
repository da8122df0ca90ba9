package webhooks

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/rvallim/raffle-allocation/pkg/api"
	"github.com/rvallim/raffle-allocation/pkg/dispatcher"
	"github.com/rvallim/raffle-allocation/pkg/gateway"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

const secretHeader = "X-Webhook-Secret"

// WebhooksHandler receives payment-gateway notifications. The gateway retries
// on non-2xx, so anything we cannot act on but did safely absorb is answered
// with a 200 ack; only authentication failures and malformed payloads refuse.
type WebhooksHandler struct {
	Dispatcher *dispatcher.Dispatcher
	Secret     string
}

// NewWebhooksHandler creates a new WebhooksHandler.
func NewWebhooksHandler(d *dispatcher.Dispatcher, secret string) *WebhooksHandler {
	return &WebhooksHandler{Dispatcher: d, Secret: secret}
}

// HandlePaymentNotification processes a gateway payment webhook.
func (h *WebhooksHandler) HandlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get(secretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.Secret)) != 1 {
		// Reject before touching the body: an unauthenticated caller must not
		// cause any state change.
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := body.Decode(&raw); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	conf, err := gateway.ParseNotification(raw)
	if err != nil {
		if errors.Is(err, gateway.ErrUnresolvedReference) {
			// Approved payment we cannot tie to an order. Ack so the gateway
			// stops retrying, and leave the trail for reconciliation.
			log.Printf("CRITICAL: approved webhook with no usable reference: %s", string(raw))
			ack(w)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid notification: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Dispatcher.HandleWebhook(r.Context(), conf)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrUnresolvedReference), errors.Is(err, storage.ErrNotFound):
			log.Printf("CRITICAL: webhook reference %q matches no order", conf.ClientTxRef)
			ack(w)
		case errors.Is(err, storage.ErrNoStock):
			// The money is in and the order is marked paid; numbers have to be
			// sorted out by an operator or the reconciliation pass.
			log.Printf("CRITICAL: pool exhausted while allocating for reference %q: %v", conf.ClientTxRef, err)
			ack(w)
		case errors.Is(err, storage.ErrOrderNotPayable):
			log.Printf("WARN: webhook for reference %q hit a non-payable order: %v", conf.ClientTxRef, err)
			ack(w)
		default:
			// Transient failure: a 500 makes the gateway retry, which is safe
			// because the whole pipeline is idempotent.
			log.Printf("ERROR: failed to process webhook for reference %q: %v", conf.ClientTxRef, err)
			http.Error(w, "Failed to process notification", http.StatusInternalServerError)
		}
		return
	}

	if result.Approved && !result.AlreadyAssigned {
		log.Printf("INFO: webhook settled order %s with %d numbers", result.OrderId, len(result.Numbers))
	}
	ack(w)
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(api.WebhookAck{Ok: true}); err != nil {
		log.Printf("ERROR: failed to write webhook ack: %v", err)
	}
}
