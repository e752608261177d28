package events

import (
	"context"

	"report-router/internal/circuitbreaker"
	"report-router/internal/routing"
)

// Guarded stops calling a broker that keeps failing, so routing passes do
// not wait on a dead connection for every moved file.
type Guarded struct {
	next    routing.EventPublisher
	breaker *circuitbreaker.Breaker
}

// NewGuarded wraps next with breaker.
func NewGuarded(next routing.EventPublisher, breaker *circuitbreaker.Breaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) PublishRouted(ctx context.Context, event routing.RoutedEvent) error {
	return g.breaker.Execute(func() error {
		return g.next.PublishRouted(ctx, event)
	})
}
