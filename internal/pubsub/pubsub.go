// Package pubsub provides a small in-process fan-out used to decouple
// the dispatch coordinator from feed publishers and other observers.
package pubsub

import "sync"

// Topic fans published values out to every subscriber. Publishing never
// blocks: a subscriber that falls behind loses the value.
type Topic[T any] struct {
	mu     sync.RWMutex
	subs   []chan T
	closed bool
	buffer int
}

// NewTopic returns a topic whose subscriber channels hold up to buffer
// undelivered values. A non-positive buffer defaults to 16.
func NewTopic[T any](buffer int) *Topic[T] {
	if buffer <= 0 {
		buffer = 16
	}
	return &Topic[T]{buffer: buffer}
}

// Publish delivers v to every subscriber with room in its channel.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	for _, ch := range t.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel. The channel
// is closed by Unsubscribe or Close.
func (t *Topic[T]) Subscribe() <-chan T {
	ch := make(chan T, t.buffer)
	t.mu.Lock()
	if t.closed {
		close(ch)
	} else {
		t.subs = append(t.subs, ch)
	}
	t.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (t *Topic[T]) Unsubscribe(sub <-chan T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, ch := range t.subs {
		if ch == sub {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel and drops further publishes.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for _, ch := range t.subs {
		close(ch)
	}
	t.subs = nil
}
