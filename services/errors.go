package services

import "errors"

// Error kinds surfaced by the cart and order services. Handlers branch on
// these with errors.Is to pick a status code; everything here is a
// deterministic business-rule rejection, never retried.
var (
	// ErrValidation marks malformed input, e.g. a non-positive quantity.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a missing product, cart, order or line item.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a removal of more items than the cart holds.
	// The removal is all-or-nothing; nothing is clamped or partially applied.
	ErrConflict = errors.New("conflict")

	// ErrNoCart marks a checkout attempted by a user who has no cart.
	ErrNoCart = errors.New("user has no cart")

	// ErrIntegrity marks corrupted or legacy data, e.g. an order with no
	// bound cart. Distinct from an empty cart, which is a valid zero total.
	ErrIntegrity = errors.New("data integrity violation")
)
