package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkers_WaitBlocksUntilWorkersReturn(t *testing.T) {
	w := newWorkers(1)
	release := make(chan struct{})
	w.Go("relay", func() error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, w.Wait(context.Background()))
}

func TestWorkers_ForwardsErrors(t *testing.T) {
	w := newWorkers(2)
	boom := errors.New("broker unreachable")
	w.Go("due payment consumer", func() error { return boom })
	w.Go("outbox relay", func() error { return nil })

	require.NoError(t, w.Wait(context.Background()))
	select {
	case err := <-w.Errors():
		assert.ErrorIs(t, err, boom)
		assert.EqualError(t, err, "due payment consumer: broker unreachable")
	default:
		t.Fatal("expected a worker error")
	}
	assert.Empty(t, w.Errors())
}
