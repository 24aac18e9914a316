package domain

import "errors"

// Common errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("access forbidden: you don't own this resource")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrInvalidIntent      = errors.New("invalid payment intent")
)
