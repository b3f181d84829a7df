// Package gate runs the animated authentication gate: a matrix-rain frame
// loop driven at a fixed tick rate, with the real credential check running
// concurrently in the background. The visual phase machine and the check's
// result can never drift apart because only the frame loop owns the
// animation state; the background task communicates through a one-shot
// channel.
package gate

import (
	"context"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tpabla/journal-tui/pkg/rain"
)

// Timing contract. MinAuthDelay keeps the authenticating phase on screen long
// enough to avoid a jarring flash; FailHold keeps the denial readable.
const (
	TickInterval = 50 * time.Millisecond
	MinAuthDelay = 3 * time.Second
	FailHold     = 2 * time.Second
)

// Controller drives one gate invocation. The zero value is not usable; use
// New.
type Controller struct {
	Tick       time.Duration
	MinDelay   time.Duration
	FailHold   time.Duration
	DecodeHold time.Duration

	rng *rand.Rand
}

// New returns a Controller with the standard timing contract.
func New() *Controller {
	return &Controller{
		Tick:       TickInterval,
		MinDelay:   MinAuthDelay,
		FailHold:   FailHold,
		DecodeHold: rain.DecodeHold,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewScreen initializes a tcell screen set up for the animation: hidden
// cursor, black background. The caller owns Fini.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(styleBackground)
	screen.HideCursor()
	screen.Clear()
	return screen, nil
}

// Run executes the gate: it enters the authenticating phase immediately,
// starts authFn in the background behind the minimum delay, and drives the
// animation until a terminal phase. The returned boolean is exactly authFn's
// result, except that Esc always yields false regardless of what the check
// would eventually report. Errors from authFn are treated as denial.
//
// The foreground loop never blocks on the background task; it selects over
// animation ticks, key events, and the task's completion channel. On
// cancellation the task's context is cancelled before returning, so the
// worker is signalled rather than abandoned.
func (c *Controller) Run(ctx context.Context, screen tcell.Screen, authFn AuthFunc) (bool, error) {
	width, height := screen.Size()
	anim := rain.NewAnimation(width, height, c.rng, time.Now())
	anim.Hold = c.DecodeHold
	anim.StartAuthenticating()

	task := StartAuth(ctx, authFn, c.MinDelay)
	defer task.Cancel()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(c.Tick)
	defer ticker.Stop()

	var failUntil time.Time
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape && !anim.Phase().Terminal() {
					return false, nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case res := <-task.Done():
			if res.Err == nil && res.OK {
				anim.Succeed()
			} else {
				anim.Fail()
				failUntil = time.Now().Add(c.FailHold)
			}

		case now := <-ticker.C:
			anim.Advance(now)
			Draw(screen, anim, now)
			switch anim.Phase() {
			case rain.PhaseSuccess:
				return true, nil
			case rain.PhaseFailed:
				if now.After(failUntil) {
					return false, nil
				}
			}
		}
	}
}

// RunLock plays the short vault-locking animation: the securing message types
// out and holds briefly. Esc skips. Purely visual; there is no background
// work to wait for.
func (c *Controller) RunLock(screen tcell.Screen, total time.Duration) error {
	width, height := screen.Size()
	anim := rain.NewAnimation(width, height, c.rng, time.Now())
	anim.StartLocking()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(c.Tick)
	defer ticker.Stop()

	deadline := time.Now().Add(total)
	for {
		select {
		case ev := <-events:
			if key, ok := ev.(*tcell.EventKey); ok && key.Key() == tcell.KeyEscape {
				return nil
			}
		case now := <-ticker.C:
			if now.After(deadline) {
				return nil
			}
			anim.Advance(now)
			Draw(screen, anim, now)
		}
	}
}
