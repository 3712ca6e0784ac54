package payments

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

type breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[*resty.Response]
}

func newBreaker(name string) *breaker {
	return &breaker{
		name: name,
		cb: gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("payment provider %s circuit: %s -> %s", name, from, to)
			},
		}),
	}
}

// do runs call through the breaker. Transport errors and 5xx responses count
// as breaker failures; any error or non-2xx response comes back wrapped in ErrProvider.
// 4xx responses are returned with their body so callers can inspect them.
func (b *breaker) do(call func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := b.cb.Execute(func() (*resty.Response, error) {
		resp, err := call()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return resp, fmt.Errorf("status %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		return resp, fmt.Errorf("%w: %s: %v", ErrProvider, b.name, err)
	}
	return resp, nil
}

func unexpectedStatus(provider string, resp *resty.Response) error {
	return fmt.Errorf("%w: %s responded with status %d: %s", ErrProvider, provider, resp.StatusCode(), string(resp.Body()))
}
