package script

import (
	"context"
	"sync"
)

// Outcome is what a finished evaluation produced. Err is set when the
// program faulted; Value holds the rendered result otherwise.
type Outcome struct {
	Value string
	Err   error
}

// Future resolves once, when the evaluation that created it finishes.
type Future struct {
	done chan struct{}
	once sync.Once
	out  Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(out Outcome) {
	f.once.Do(func() {
		f.out = out
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-f.done:
		return f.out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
