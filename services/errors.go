package services

import (
	"errors"
	"fmt"

	"github.com/Kariqs/myfood-api/payments"
	"github.com/Kariqs/myfood-api/pricing"
	"github.com/Kariqs/myfood-api/repositories"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrIncompleteAddress = fmt.Errorf("%w: delivery address is incomplete", ErrValidation)
	ErrEmptyCart         = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, pricing.MaxQuantity)
	ErrUnknownProvider   = fmt.Errorf("%w: unsupported payment provider", ErrValidation)

	ErrPriceIntegrity    = errors.New("declared amount does not match the recomputed total")
	ErrProvider          = payments.ErrProvider
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	ErrPaymentDeclined   = errors.New("payment was declined")
	ErrAlreadyFinalized  = errors.New("payment already finalized")
	ErrPaymentRequired   = errors.New("a captured payment is required")

	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = repositories.ErrInvalidTransition
)
