package bus

import "time"

// Event is one published message. Treat it as read-only; every subscriber
// receives the same value.
type Event[T any] struct {
	ID    string
	Topic string
	Time  time.Time
	Data  T
}

// Handler is invoked synchronously for each delivered event. Errors are
// joined and returned from Publish.
type Handler[T any] func(Event[T]) error

// Filter decides whether an event is delivered. Any false drops it silently.
type Filter[T any] func(Event[T]) bool

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	IsActive() bool
	Cancel()
}

// Observer is told about every delivery. Implementations must return quickly.
type Observer interface {
	OnDelivered(topic string, handlers int, err error, took time.Duration)
}

// Metrics are only collected while at least one observer is registered.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
}
