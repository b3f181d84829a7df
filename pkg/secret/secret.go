// Package secret holds vault unlock secrets in memory. A secret is never
// written to disk and never passed on a command line; callers hand it to
// external tooling over stdin and wipe it when done.
package secret

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// charset for generated vault passwords. Alphanumeric only: hdiutil reads the
// password from stdin up to the first newline, so shell-hostile characters buy
// nothing and quoting bugs cost everything.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratedLength is the length of an auto-generated vault password.
const GeneratedLength = 32

// ErrEmpty indicates an empty secret where one is required.
var ErrEmpty = errors.New("secret: empty secret")

// Secret wraps sensitive bytes. The backing buffer is locked into memory on a
// best-effort basis and zeroed by Wipe.
type Secret struct {
	b []byte
}

// New wraps existing bytes as a Secret, taking ownership of the slice.
func New(b []byte) (*Secret, error) {
	if len(b) == 0 {
		return nil, ErrEmpty
	}
	lockMemory(b)
	return &Secret{b: b}, nil
}

// Generate creates a cryptographically random secret of the given length.
func Generate(length int) (*Secret, error) {
	if length <= 0 {
		return nil, fmt.Errorf("secret: invalid length %d", length)
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, fmt.Errorf("secret: random generation failed: %w", err)
		}
		b[i] = charset[n.Int64()]
	}
	lockMemory(b)
	return &Secret{b: b}, nil
}

// Bytes returns the raw secret. The caller must not retain the slice past the
// secret's lifetime.
func (s *Secret) Bytes() []byte { return s.b }

// Len returns the secret length in bytes.
func (s *Secret) Len() int { return len(s.b) }

// Reader returns a reader over the secret for piping to a child process.
func (s *Secret) Reader() io.Reader { return bytes.NewReader(s.b) }

// Wipe zeroes the secret and releases the memory lock. The secret is unusable
// afterwards.
func (s *Secret) Wipe() {
	if s == nil || s.b == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
	unlockMemory(s.b)
	s.b = nil
}
