package event

import (
	"reflect"
	"sync"
)

// topic holds one event type's two buffers and its handlers.
type topic[T any] struct {
	front, back []T
	handlers    []func(T)
}

func (t *topic[T]) swap() {
	t.front, t.back = t.back, t.front
	clear(t.back)
	t.back = t.back[:0]
}

func (t *topic[T]) dispatch(handlers []func(T)) int {
	for _, ev := range t.front {
		for _, h := range handlers {
			h(ev)
		}
	}
	return len(t.front)
}

type queue interface {
	swap()
	deliver() int
	pending() int
}

type boundTopic[T any] struct {
	bus *Bus
	t   *topic[T]
}

func (b boundTopic[T]) swap() { b.t.swap() }

func (b boundTopic[T]) deliver() int {
	b.bus.mu.Lock()
	hs := b.t.handlers
	b.bus.mu.Unlock()
	return b.t.dispatch(hs)
}

func (b boundTopic[T]) pending() int { return len(b.t.back) }

// Bus is a double-buffered event bus with one typed queue per event type.
// Events emitted in frame N are delivered in frame N+1, after the dispatch
// system swaps the buffers. Emit and dispatch run on the frame goroutine;
// Subscribe may be called from anywhere.
type Bus struct {
	mu     sync.Mutex
	topics map[reflect.Type]queue
	order  []queue // delivery order: first Emit or Subscribe of each type
}

func NewBus() *Bus {
	return &Bus{topics: make(map[reflect.Type]queue)}
}

func topicFor[T any](b *Bus) *topic[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.topics[key]; ok {
		return q.(boundTopic[T]).t
	}
	t := &topic[T]{}
	q := boundTopic[T]{bus: b, t: t}
	b.topics[key] = q
	b.order = append(b.order, q)
	return t
}

// Emit queues an event for the next frame. Slices inside the event must be
// owned by it: handlers run after the producer has moved on.
func Emit[T any](b *Bus, event T) {
	t := topicFor[T](b)
	t.back = append(t.back, event)
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := topicFor[T](b)
	b.mu.Lock()
	t.handlers = append(t.handlers, fn)
	b.mu.Unlock()
}

// SwapBuffers makes last frame's events deliverable and empties the
// emit buffer.
func (b *Bus) SwapBuffers() {
	for _, q := range b.queues() {
		q.swap()
	}
}

// DispatchAll delivers every swapped event, type by type in first-use
// order, each to its handlers in subscription order. It returns the number
// of events delivered.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, q := range b.queues() {
		n += q.deliver()
	}
	return n
}

// Pending is the number of events waiting for the next swap.
func (b *Bus) Pending() int {
	n := 0
	for _, q := range b.queues() {
		n += q.pending()
	}
	return n
}

func (b *Bus) queues() []queue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order
}
