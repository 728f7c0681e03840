package service

import (
	"errors"
	"fmt"

	"quickbite/internal/model"
)

// ErrMutationInFlight is returned when a cart mutation is attempted while
// another is still round-tripping. One coarse gate per cart; cart edits are
// human-paced, so over-serialization is the accepted trade-off.
var ErrMutationInFlight = errors.New("cart mutation already in flight")

// ValidationError is malformed mutation input, surfaced inline and never
// fatal.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CrossRestaurantConflictError blocks an add that would mix restaurants in
// one cart. Recovery is the explicit clear-and-add flow; nothing is
// auto-resolved.
type CrossRestaurantConflictError struct {
	CartRestaurantID   string
	CartRestaurantName string
	Pending            model.MenuItem
	PendingQuantity    int
}

func (e *CrossRestaurantConflictError) Error() string {
	return fmt.Sprintf("cart already has items from %s; clear it to add items from another restaurant",
		e.CartRestaurantName)
}

// TransitionRejectedError is a status transition refused either locally by
// the state machine or by the server after an optimistic apply. Any
// optimistic change has been rolled back by the time callers see it.
type TransitionRejectedError struct {
	OrderID string
	From    model.Status
	To      model.Status
	Reason  string
}

func (e *TransitionRejectedError) Error() string {
	return fmt.Sprintf("transition %s -> %s rejected for order %s: %s", e.From, e.To, e.OrderID, e.Reason)
}
