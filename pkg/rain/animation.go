package rain

import (
	"math/rand"
	"time"
)

// Messages shown by the gate. The decoding message is revealed one rune per
// tick; the others are static per phase.
const (
	MsgAuthenticating = "BIOMETRIC SCAN INITIATED..."
	MsgAccessGranted  = "ACCESS GRANTED - DECRYPTING JOURNAL"
	MsgAccessDenied   = "ACCESS DENIED"
	MsgLocking        = "ENCRYPTING VAULT - SECURING MEMORIES"
)

// DecodeHold is how long the fully typed message stays on screen before the
// animation reports success. It guarantees a minimum dwell regardless of how
// fast the machine renders.
const DecodeHold = 3 * time.Second

// Animation is the complete visual state of the gate: every column, the
// current phase, and the typewriter progress of the center message. It is a
// plain value owned by whoever drives the frame loop; there is no package
// level instance.
type Animation struct {
	Columns []*Column

	// Hold is how long the fully typed message dwells before Success.
	// Defaults to DecodeHold.
	Hold time.Duration

	phase     Phase
	started   time.Time
	message   []rune
	typed     int
	typedDone time.Time // zero until the message is fully typed
}

// NewAnimation creates the animation for a width x height cell grid.
func NewAnimation(width, height int, rng *rand.Rand, now time.Time) *Animation {
	cols := make([]*Column, width)
	for i := range cols {
		cols[i] = NewColumn(height, rng)
	}
	return &Animation{Columns: cols, Hold: DecodeHold, phase: PhaseRain, started: now}
}

// Phase returns the current phase.
func (a *Animation) Phase() Phase { return a.phase }

// Started returns when the animation began, used for blink timing.
func (a *Animation) Started() time.Time { return a.started }

// Message returns the full center message for the current phase.
func (a *Animation) Message() string { return string(a.message) }

// Typed returns the prefix of the message revealed so far.
func (a *Animation) Typed() string { return string(a.message[:a.typed]) }

// TypingDone reports whether the whole message has been revealed.
func (a *Animation) TypingDone() bool { return a.typed >= len(a.message) }

// StartAuthenticating enters the Authenticating phase. It is the only entry
// point out of PhaseRain.
func (a *Animation) StartAuthenticating() {
	a.phase = PhaseAuthenticating
	a.message = []rune(MsgAuthenticating)
}

// Succeed moves to Decoding after a positive credential check; the granted
// message types out from the start.
func (a *Animation) Succeed() {
	a.phase = PhaseDecoding
	a.message = []rune(MsgAccessGranted)
	a.typed = 0
	a.typedDone = time.Time{}
}

// Fail moves to the terminal Failed phase.
func (a *Animation) Fail() {
	a.phase = PhaseFailed
	a.message = []rune(MsgAccessDenied)
}

// StartLocking sets up the lock-screen variant: a typewriter reveal with no
// credential check behind it.
func (a *Animation) StartLocking() {
	a.phase = PhaseDecoding
	a.message = []rune(MsgLocking)
	a.typed = 0
	a.typedDone = time.Time{}
}

// Advance runs one tick at the given instant: every column falls, and in
// Decoding the typewriter reveals one more rune. Once the message is fully
// typed a hold timer starts; only after DecodeHold elapses does the phase
// move to Success.
func (a *Animation) Advance(now time.Time) {
	for _, c := range a.Columns {
		c.Advance()
	}

	if a.phase != PhaseDecoding {
		return
	}

	if a.typed < len(a.message) {
		a.typed++
		return
	}
	if a.typedDone.IsZero() {
		a.typedDone = now
		return
	}
	if now.Sub(a.typedDone) > a.Hold {
		a.phase = PhaseSuccess
	}
}
