//go:build darwin

package auth

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// The dialog script runs a harmless command with administrator privileges.
// Success means the user entered a valid login password; cancelling the
// dialog makes osascript exit non-zero with a "User canceled" error.
const dialogScript = `do shell script "true" with prompt "Journal requires authentication to decrypt your entries" with administrator privileges`

type osascriptAuthenticator struct{}

func systemAuthenticator() Authenticator {
	return osascriptAuthenticator{}
}

func (osascriptAuthenticator) Authenticate(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", dialogScript)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	// Dismissing the dialog is a denial, not a failure.
	if strings.Contains(string(out), "User canceled") {
		return false, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, fmt.Errorf("auth: failed to run authentication dialog: %w", err)
}
