package assets

import "context"

// Handle is the pending result of a background load. It settles exactly once.
type Handle[T any] struct {
	name string
	done chan struct{}
	val  T
	err  error
}

func newHandle[T any](name string) *Handle[T] {
	return &Handle[T]{name: name, done: make(chan struct{})}
}

// settle must be called once, from the loading goroutine.
func (h *Handle[T]) settle(val T, err error) {
	h.val, h.err = val, err
	close(h.done)
}

// Name is the object name or source the handle was created for.
func (h *Handle[T]) Name() string { return h.name }

// Done is closed once the load succeeded or failed.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Wait blocks until the handle settles or ctx ends.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Value returns the result without blocking. ok is false while pending or after a failure.
func (h *Handle[T]) Value() (val T, ok bool) {
	select {
	case <-h.done:
		if h.err != nil {
			return val, false
		}
		return h.val, true
	default:
		return val, false
	}
}

// Err returns the load error, nil while pending or on success.
func (h *Handle[T]) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}
