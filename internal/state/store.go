package state

import (
	"slices"
	"sync"
)

// Observer receives the full record, first on Subscribe and then after every change.
type Observer[T any] func(T)

type delivery[T any] struct {
	value T
	ids   []uint64
}

// Store is an observable record. Writes replace the whole value and are
// broadcast to every registered observer in write order.
//
// Only one goroutine drains the notification queue at a time. A setter called
// from inside an observer is queued and delivered once the current broadcast
// has finished, so observers are never re-entered. Likewise, Subscribe or
// Update racing a broadcast on another goroutine may return before its own
// delivery has run; that goroutine delivers it in order.
//
// If an observer panics the panic reaches the caller. Deliveries still
// pending are kept and flushed by the next Subscribe or Update.
type Store[T any] struct {
	mu        sync.Mutex
	value     T
	observers map[uint64]Observer[T]
	nextID    uint64

	queue    []delivery[T]
	draining bool
}

func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value:     initial,
		observers: make(map[uint64]Observer[T]),
	}
}

// Get returns the current record
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers o and immediately delivers the current record to it.
// When another goroutine is mid-broadcast the initial delivery is queued behind
// it instead, and runs on that goroutine. The returned func removes the observer; calling it again is a no-op.
func (s *Store[T]) Subscribe(o Observer[T]) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.queue = append(s.queue, delivery[T]{value: s.value, ids: []uint64{id}})
	s.drainLocked()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Update replaces the record with fn(current) and notifies all observers.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)

	ids := make([]uint64, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	s.queue = append(s.queue, delivery[T]{value: s.value, ids: ids})
	s.drainLocked()
}

// drainLocked must be called with mu held, it always releases it.
func (s *Store[T]) drainLocked() {
	if s.draining {
		// Another call further up the stack (or another goroutine) owns the queue
		s.mu.Unlock()
		return
	}
	s.draining = true

	var cur delivery[T]
	next := 0

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			// Observers the broadcast hadn't reached yet get it on the next drain
			if next < len(cur.ids) {
				rest := delivery[T]{value: cur.value, ids: cur.ids[next:]}
				s.queue = append([]delivery[T]{rest}, s.queue...)
			}
			s.mu.Unlock()
			panic(r)
		}
	}()

	for len(s.queue) > 0 {
		cur = s.queue[0]
		s.queue = s.queue[1:]

		for next = 0; next < len(cur.ids); {
			id := cur.ids[next]
			next++

			// Observers removed since the delivery was queued are skipped
			o, ok := s.observers[id]
			if !ok {
				continue
			}
			s.mu.Unlock()
			o(cur.value)
			s.mu.Lock()
		}
	}

	s.draining = false
	s.mu.Unlock()
}
