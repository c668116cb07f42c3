package eventbus

import (
	"context"

	"github.com/richxcame/logistics-pricing/pkg/resilience"
)

// GuardedPublisher routes publishes through a circuit breaker so a broker
// outage fails fast instead of stalling request handlers.
type GuardedPublisher struct {
	next    Publisher
	breaker *resilience.CircuitBreaker
}

// NewGuardedPublisher wraps next with breaker.
func NewGuardedPublisher(next Publisher, breaker *resilience.CircuitBreaker) *GuardedPublisher {
	return &GuardedPublisher{next: next, breaker: breaker}
}

// Publish implements Publisher.
func (g *GuardedPublisher) Publish(ctx context.Context, subject string, event *Event) error {
	_, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, g.next.Publish(ctx, subject, event)
	})
	return err
}
