//go:build !linux && !darwin

package secret

// Memory locking is unsupported on this platform; the calls are no-ops.

func lockMemory(b []byte)   {}
func unlockMemory(b []byte) {}

// DisableCoreDumps is a no-op on this platform.
func DisableCoreDumps() {}
