// Package notify provides typed change feeds.
//
// A [Feed] fans a value out to every subscribed handler, synchronously and in
// subscription order. Handlers run on the emitting goroutine, so a feed adds
// no concurrency of its own: whatever thread drives the emitter also drives
// the subscribers.
//
//	var pages notify.Feed[int]
//	stop := pages.Subscribe(func(i int) { fmt.Println("page", i) })
//	defer stop()
//	pages.Emit(3)
package notify

import "sync"

// Handler receives one emitted value.
type Handler[T any] func(T)

// Feed is a list of handlers for values of type T.
// The zero value is ready to use.
type Feed[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []entry[T]
}

type entry[T any] struct {
	id int
	fn Handler[T]
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (f *Feed[T]) Subscribe(fn Handler[T]) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.handlers = append(f.handlers, entry[T]{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, e := range f.handlers {
			if e.id == id {
				f.handlers = append(f.handlers[:i:i], f.handlers[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every handler with v. Handlers added or removed while Emit runs
// take effect on the next call.
func (f *Feed[T]) Emit(v T) {
	f.mu.Lock()
	snapshot := make([]Handler[T], len(f.handlers))
	for i, e := range f.handlers {
		snapshot[i] = e.fn
	}
	f.mu.Unlock()

	for _, fn := range snapshot {
		fn(v)
	}
}

// Len returns the number of subscribed handlers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

// Clear removes every handler.
func (f *Feed[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = nil
}
