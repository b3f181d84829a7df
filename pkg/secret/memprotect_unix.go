//go:build linux || darwin

package secret

import "golang.org/x/sys/unix"

// lockMemory pins the slice's pages so the secret cannot be swapped to disk.
// Best-effort: the process may lack the privilege, which is not worth failing
// the operation over.
func lockMemory(b []byte) {
	_ = unix.Mlock(b)
}

// unlockMemory releases pages pinned by lockMemory. Best-effort.
func unlockMemory(b []byte) {
	_ = unix.Munlock(b)
}

// DisableCoreDumps sets RLIMIT_CORE to 0 so key material cannot land in a
// core file. Best-effort.
func DisableCoreDumps() {
	_ = unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0})
}
