package rain

// Phase is one state of the gate's visual state machine. The set is closed;
// rendering and transition logic switch exhaustively over it.
type Phase int

const (
	// PhaseRain is the idle state before the gate starts.
	PhaseRain Phase = iota
	// PhaseAuthenticating is shown while the credential check runs.
	PhaseAuthenticating
	// PhaseDecoding types out the access-granted message.
	PhaseDecoding
	// PhaseSuccess is terminal: the gate admits the user.
	PhaseSuccess
	// PhaseFailed is terminal: the gate denies the user.
	PhaseFailed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseRain:
		return "rain"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseDecoding:
		return "decoding"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a gate invocation.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseFailed
}
