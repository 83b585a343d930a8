package main

import (
	"context"
	"fmt"
	"sync"
)

// workers tracks background loops that must finish before the process
// releases the pool and redis client they write through.
type workers struct {
	wg   sync.WaitGroup
	errs chan error
}

func newWorkers(buffer int) *workers {
	return &workers{errs: make(chan error, buffer)}
}

// Go runs fn in a goroutine. A non-nil error is sent to Errors, prefixed
// with name.
func (w *workers) Go(name string, fn func() error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := fn(); err != nil {
			w.errs <- fmt.Errorf("%s: %w", name, err)
		}
	}()
}

func (w *workers) Errors() <-chan error {
	return w.errs
}

// Wait blocks until every worker has returned or ctx is done.
func (w *workers) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
