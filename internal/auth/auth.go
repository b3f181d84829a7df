// Package auth verifies the operator's identity before the vault unlocks.
package auth

import "context"

// Authenticator answers whether the current operator may open the journal.
type Authenticator interface {
	// Authenticate blocks until the check completes or ctx is cancelled.
	// A false result with a nil error is an ordinary denial.
	Authenticate(ctx context.Context) (bool, error)
}

// System returns the platform authenticator. On macOS it prompts for the
// user's login password through the system authorization dialog; elsewhere
// it grants access unconditionally, since the vault tooling is macOS-only
// and other platforms have nothing to unlock.
func System() Authenticator {
	return systemAuthenticator()
}

// Func adapts a plain function into an Authenticator, for tests and wiring.
type Func func(ctx context.Context) (bool, error)

// Authenticate calls f.
func (f Func) Authenticate(ctx context.Context) (bool, error) {
	return f(ctx)
}
