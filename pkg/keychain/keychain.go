// Package keychain persists the vault unlock secret as a generic password in
// the macOS Keychain via the security(1) tool.
//
// The secret is never placed on the command line. Saving drives security's
// interactive mode with the add-generic-password command written to stdin;
// loading uses find-generic-password -w, which prints only the password.
package keychain

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tpabla/journal-tui/pkg/secret"
)

// Service/account pair identifying the journal's keychain item.
const (
	DefaultService = "JournalVault"
	DefaultAccount = "journal-tui"
)

// Errors
var (
	ErrNotFound   = errors.New("keychain: no stored secret for this service")
	ErrSaveFailed = errors.New("keychain: failed to save secret")
)

// Runner executes the security tool, feeding it stdin and capturing output.
// Tests substitute a fake.
type Runner interface {
	Run(name string, stdin []byte, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(name string, stdin []byte, args ...string) ([]byte, []byte, error) {
	cmd := exec.Command(name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Store reads and writes one generic-password keychain item.
type Store struct {
	Service string
	Account string

	run Runner
}

// New creates a Store for the default journal service/account pair.
func New() *Store {
	return &Store{Service: DefaultService, Account: DefaultAccount, run: execRunner{}}
}

// SetRunner replaces the external-process runner, for tests.
func (s *Store) SetRunner(r Runner) { s.run = r }

// Save stores the secret, overwriting any existing item for the same
// service/account pair. The add-generic-password command travels over stdin
// (security -i) so the secret never appears in the process list.
func (s *Store) Save(sec *secret.Secret) error {
	cmd := fmt.Sprintf("add-generic-password -a %q -s %q -U -w %q\n",
		s.Account, s.Service, string(sec.Bytes()))

	_, stderr, err := s.run.Run("security", []byte(cmd), "-i")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSaveFailed, diag(stderr, err))
	}
	return nil
}

// Load retrieves the stored secret. A missing item is ErrNotFound, which
// callers treat as "fall back to a password prompt" rather than a failure.
func (s *Store) Load() (*secret.Secret, error) {
	stdout, _, err := s.run.Run("security", nil,
		"find-generic-password",
		"-a", s.Account,
		"-s", s.Service,
		"-w",
	)
	if err != nil {
		return nil, ErrNotFound
	}

	pw := strings.TrimRight(string(stdout), "\n")
	if pw == "" {
		return nil, ErrNotFound
	}
	return secret.New([]byte(pw))
}

func diag(stderr []byte, err error) string {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return msg
	}
	return err.Error()
}
