package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qaharness/uiharness/framework/opt"
)

func TestNonBlockingSendDropsWhenFull(t *testing.T) {
	assert.False(t, NonBlockingSend(make(chan int), 1))

	queue := make(chan int, 2)
	assert.True(t, NonBlockingSend(queue, 1))
	assert.True(t, NonBlockingSend(queue, 2))
	assert.False(t, NonBlockingSend(queue, 3))
	assert.Equal(t, []int{1, 2}, []int{<-queue, <-queue})
}

func TestTryReceive(t *testing.T) {
	ctx := context.Background()
	queue := make(chan int, 1)
	assert.Equal(t, opt.None[int](), TryReceive(ctx, queue, time.Millisecond))

	queue <- 1
	assert.Equal(t, opt.Some(1), TryReceive(ctx, queue, time.Millisecond))

	time.AfterFunc(20*time.Millisecond, func() { queue <- 2 })
	assert.Equal(t, opt.Some(2), TryReceive(ctx, queue, time.Second))
}

func TestTryReceiveStopsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.False(t, TryReceive(ctx, make(chan int), time.Minute).IsDefined())
	assert.Less(t, time.Since(start), time.Second)
}
