package services

import (
	"fmt"
	"log"

	"github.com/Kariqs/myfood-api/models"
)

type CheckoutState string

const (
	StateCartReview      CheckoutState = "CART_REVIEW"
	StateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	StateCapturing       CheckoutState = "CAPTURING"
	StateConfirmed       CheckoutState = "CONFIRMED"
	StateFailed          CheckoutState = "FAILED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	StateCartReview:      {StateAwaitingPayment},
	StateAwaitingPayment: {StateCapturing, StateFailed},
	StateCapturing:       {StateConfirmed, StateFailed},
}

func (s CheckoutState) CanTransition(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) Terminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// stateOf derives where a checkout stands from its payment intent.
func stateOf(intent *models.PaymentIntent) CheckoutState {
	switch intent.Status {
	case models.PaymentCaptured:
		return StateConfirmed
	case models.PaymentFailed:
		return StateFailed
	default:
		return StateCapturing
	}
}

// checkoutRun tracks one request's walk through the checkout states.
type checkoutRun struct {
	ref   string
	state CheckoutState
}

func newCheckoutRun(ref string, state CheckoutState) *checkoutRun {
	return &checkoutRun{ref: ref, state: state}
}

func (r *checkoutRun) advance(next CheckoutState) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("checkout %s: illegal transition %s -> %s", r.ref, r.state, next)
	}
	log.Printf("checkout %s: %s -> %s", r.ref, r.state, next)
	r.state = next
	return nil
}

// mustAdvance is for transitions the flow itself guarantees.
func (r *checkoutRun) mustAdvance(next CheckoutState) {
	if err := r.advance(next); err != nil {
		log.Println(err)
	}
}
