package gateway

import "errors"

// ErrGatewayUnavailable is returned when the payment provider cannot be
// reached or answers with a server error. Transient; safe to retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrUnresolvedReference is returned when an approved signal carries no
// resolvable client transaction reference. Logged, never acted on.
var ErrUnresolvedReference = errors.New("unresolved client transaction reference")
