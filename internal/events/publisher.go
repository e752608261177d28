// Package events announces routed reports to other systems. Publishers
// implement routing.EventPublisher and can be combined with Multi.
package events

import (
	"context"
	stderrors "errors"

	"report-router/internal/routing"
)

// DefaultChannel is the Redis channel and AMQP exchange used when none is configured.
const DefaultChannel = "reports.routed"

// Multi publishes each event to every publisher in order and joins their errors.
type Multi []routing.EventPublisher

// NewMulti drops nil publishers.
func NewMulti(publishers ...routing.EventPublisher) Multi {
	m := make(Multi, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			m = append(m, p)
		}
	}
	return m
}

func (m Multi) PublishRouted(ctx context.Context, event routing.RoutedEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishRouted(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Noop discards events.
type Noop struct{}

func (Noop) PublishRouted(context.Context, routing.RoutedEvent) error { return nil }
