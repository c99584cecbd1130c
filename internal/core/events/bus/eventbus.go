// Package bus is a small synchronous in-process publish/subscribe hub. The
// agent publishes its decisions here; the debug stream and the command line
// printer subscribe.
package bus

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type subscription struct {
	id     string
	topic  string
	mu     sync.Mutex
	active bool
	cancel func()
}

func (s *subscription) ID() string    { return s.id }
func (s *subscription) Topic() string { return s.topic }

func (s *subscription) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *subscription) Cancel() {
	s.mu.Lock()
	wasActive := s.active
	s.active = false
	s.mu.Unlock()
	if wasActive && s.cancel != nil {
		s.cancel()
	}
}

type entry[T any] struct {
	sub     *subscription
	handler Handler[T]
}

// Bus is safe for concurrent use. Delivery happens on the publisher's
// goroutine in subscription order.
type Bus[T any] struct {
	mu        sync.RWMutex
	handlers  map[string][]entry[T] // topic -> subscribers
	observers map[Observer]struct{}
	metrics   Metrics
}

func New[T any]() *Bus[T] {
	return &Bus[T]{
		handlers:  make(map[string][]entry[T]),
		observers: make(map[Observer]struct{}),
	}
}

// Subscribe registers h for topic.
func (b *Bus[T]) Subscribe(topic string, h Handler[T]) Subscription {
	s := &subscription{id: uuid.NewString(), topic: topic, active: true}
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.handlers[topic]
		for i, e := range list {
			if e.sub == s {
				b.handlers[topic] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], entry[T]{sub: s, handler: h})
	b.mu.Unlock()
	return s
}

// Publish delivers data to every subscriber of topic and returns their
// joined errors.
func (b *Bus[T]) Publish(topic string, data T, filters ...Filter[T]) error {
	ev := Event[T]{ID: uuid.NewString(), Topic: topic, Time: time.Now(), Data: data}
	for _, f := range filters {
		if !f(ev) {
			b.mu.Lock()
			if len(b.observers) > 0 {
				b.metrics.DroppedByFilters++
			}
			b.mu.Unlock()
			return nil
		}
	}

	start := time.Now()
	b.mu.RLock()
	subs := append([]entry[T](nil), b.handlers[topic]...)
	observing := len(b.observers) > 0
	b.mu.RUnlock()

	var all error
	delivered := 0
	for _, e := range subs {
		if !e.sub.IsActive() {
			continue
		}
		delivered++
		if err := e.handler(ev); err != nil {
			all = errors.Join(all, err)
		}
	}

	if observing {
		took := time.Since(start)
		b.mu.Lock()
		b.metrics.Published++
		b.metrics.DeliveredHandlers += uint64(delivered)
		if all != nil {
			b.metrics.Errors++
		}
		obs := make([]Observer, 0, len(b.observers))
		for o := range b.observers {
			obs = append(obs, o)
		}
		b.mu.Unlock()
		for _, o := range obs {
			o.OnDelivered(topic, delivered, all, took)
		}
	}
	return all
}

func (b *Bus[T]) AddObserver(o Observer) {
	b.mu.Lock()
	b.observers[o] = struct{}{}
	b.mu.Unlock()
}

func (b *Bus[T]) RemoveObserver(o Observer) {
	b.mu.Lock()
	delete(b.observers, o)
	b.mu.Unlock()
}

// Metrics returns a snapshot of the counters.
func (b *Bus[T]) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.metrics
}

// Subscribers returns the number of active subscriptions on topic.
func (b *Bus[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
