package helpers

import (
	"context"
	"time"

	"github.com/qaharness/uiharness/framework/opt"
)

// NonBlockingSend queues value on a buffered channel. It reports false, dropping the value,
// when the buffer is full or nobody is receiving.
func NonBlockingSend[V any](ch chan<- V, value V) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}

// TryReceive takes the next value from ch, giving up after timeout or when ctx is done.
func TryReceive[V any](ctx context.Context, ch <-chan V, timeout time.Duration) opt.Maybe[V] {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case value := <-ch:
		return opt.Some(value)
	case <-ctx.Done():
		return opt.None[V]()
	}
}

// IfElse picks one of two values.
func IfElse[V any](condition bool, ifTrue, ifFalse V) V {
	if condition {
		return ifTrue
	}
	return ifFalse
}
