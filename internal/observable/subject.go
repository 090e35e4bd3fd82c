// Package observable provides a single-writer value holder that pushes
// changes to subscribers and replays the latest value on subscribe.
package observable

import "sync"

// Subject holds the latest value of T. Subscribers receive the current
// value immediately and every later one; a slow subscriber only sees the
// newest value it has not consumed yet.
type Subject[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
	closed bool
}

// New returns a Subject holding initial.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value
}

// Publish replaces the current value and notifies subscribers.
// Publishing on a closed subject is a no-op.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.value = v

	for _, ch := range s.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that first yields the current value, then
// every published value. Call cancel to stop; the channel is closed then.
func (s *Subject[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 1)

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.value

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// Close closes every subscriber channel. Later Subscribe calls get a closed channel.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true

	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// offer puts v into the 1-slot buffer, dropping a stale unread value.
// Only called with the subject lock held, so no other sender races.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	ch <- v
}
