package storage

import "errors"

// ErrInvalidInput is returned for caller errors such as a non-positive quantity.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned when the requested order or raffle does not exist.
var ErrNotFound = errors.New("not found")

// ErrOrderNotPaid is returned when allocation is attempted on an order that has not been paid.
var ErrOrderNotPaid = errors.New("order not paid")

// ErrNoStock is returned when a raffle has fewer unassigned numbers than the requested quantity.
// It is terminal for the order and requires operator escalation; it is never retried into overselling.
var ErrNoStock = errors.New("no numbers left in pool")

// ErrOrderNotPayable is returned when markPaid is attempted on a cancelled order.
var ErrOrderNotPayable = errors.New("order not in a payable state")

// ErrOrderNotRevertible is returned when a revert is attempted from a state other than paid or pending.
var ErrOrderNotRevertible = errors.New("order not in a revertible state")

// ErrAlreadyAllocated is returned by the pool when a concurrent caller won the
// per-order allocation race. The loser re-reads and returns the winner's set.
var ErrAlreadyAllocated = errors.New("order already allocated")
