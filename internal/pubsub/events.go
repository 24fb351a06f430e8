// Package pubsub provides a generic publish/subscribe fan-out used for
// diagnostics entries and driver lifecycle transitions.
package pubsub

import (
	"context"
	"time"
)

// Event wraps a published payload. Seq increases by one per Publish call on
// the same broker, so subscribers can detect dropped events.
type Event[T any] struct {
	Seq       uint64
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(payload T)
}
