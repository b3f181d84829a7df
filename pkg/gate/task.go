package gate

import (
	"context"
	"time"
)

// AuthFunc performs the real credential check. A denied check is (false, nil);
// errors are reserved for checks that could not run at all.
type AuthFunc func(ctx context.Context) (bool, error)

// Result is the outcome of a background authentication task.
type Result struct {
	OK  bool
	Err error
}

// Task is a handle to one background authentication check: a stop signal plus
// a completion channel. The worker always observes cancellation through its
// context, so a cancelled gate never leaves an unstoppable goroutine behind.
type Task struct {
	cancel context.CancelFunc
	done   chan Result
}

// StartAuth launches fn on its own goroutine after the given minimum delay.
// The delay keeps the authenticating phase visible even when the real check
// finishes instantly. Cancellation interrupts both the delay and, via the
// context handed to fn, the check itself.
func StartAuth(parent context.Context, fn AuthFunc, delay time.Duration) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{cancel: cancel, done: make(chan Result, 1)}

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			t.done <- Result{Err: ctx.Err()}
			return
		}
		ok, err := fn(ctx)
		t.done <- Result{OK: ok, Err: err}
	}()
	return t
}

// Done returns the one-shot completion channel. Exactly one Result is ever
// sent on it.
func (t *Task) Done() <-chan Result { return t.done }

// Cancel signals the worker to stop. Safe to call more than once.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the worker finishes and returns its result. It is the
// join point for callers that do not poll Done.
func (t *Task) Wait() Result { return <-t.done }
