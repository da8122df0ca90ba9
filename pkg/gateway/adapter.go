// Package gateway normalizes the payment provider's heterogeneous signals
// (webhook pushes, polling responses) into one fact: whether a transaction,
// identified by its client-generated reference, is approved.
package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Confirmation is the normalized form of a provider signal.
type Confirmation struct {
	Approved     bool
	ClientTxRef  string
	ProviderTxId string
	RawStatus    string
}

// approvedStatuses is the closed set of provider literals treated as payment
// approval. Anything outside it, including unknown or missing statuses, is not
// approved: ambiguity fails closed.
var approvedStatuses = map[string]bool{
	"approved":  true,
	"paid":      true,
	"confirmed": true,
	"completed": true,
}

// notification mirrors the shapes the provider has been observed to send. The
// status and reference appear under different keys depending on the event
// version, and sometimes nested under a payment object.
type notification struct {
	Status            string `json:"status"`
	TransactionStatus string `json:"transaction_status"`
	ClientReference   string `json:"client_reference"`
	ExternalReference string `json:"external_reference"`
	TransactionId     string `json:"transaction_id"`
	Id                string `json:"id"`
	Payment           *struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Id        string `json:"id"`
	} `json:"payment"`
}

// ParseNotification normalizes a raw provider payload into a Confirmation.
// A payload whose approval cannot be correlated to an order (no reference)
// fails with ErrUnresolvedReference and must cause no state mutation.
func ParseNotification(body []byte) (*Confirmation, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("failed to decode provider notification: %w", err)
	}

	conf := &Confirmation{
		RawStatus:    firstNonEmpty(n.Status, n.TransactionStatus),
		ClientTxRef:  firstNonEmpty(n.ClientReference, n.ExternalReference),
		ProviderTxId: firstNonEmpty(n.TransactionId, n.Id),
	}
	if n.Payment != nil {
		conf.RawStatus = firstNonEmpty(conf.RawStatus, n.Payment.Status)
		conf.ClientTxRef = firstNonEmpty(conf.ClientTxRef, n.Payment.Reference)
		conf.ProviderTxId = firstNonEmpty(conf.ProviderTxId, n.Payment.Id)
	}

	conf.Approved = approvedStatuses[strings.ToLower(strings.TrimSpace(conf.RawStatus))]

	if conf.Approved && conf.ClientTxRef == "" {
		return nil, fmt.Errorf("approved notification without reference: %w", ErrUnresolvedReference)
	}

	return conf, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
