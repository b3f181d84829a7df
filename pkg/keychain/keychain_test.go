package keychain

import (
	"errors"
	"strings"
	"testing"

	"github.com/tpabla/journal-tui/pkg/secret"
)

type fakeRunner struct {
	calls  [][]string
	stdins []string
	stdout []byte
	stderr []byte
	err    error
}

func (f *fakeRunner) Run(name string, stdin []byte, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.stdins = append(f.stdins, string(stdin))
	return f.stdout, f.stderr, f.err
}

func newSecret(t *testing.T, v string) *secret.Secret {
	t.Helper()
	s, err := secret.New([]byte(v))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveKeepsSecretOffArgv(t *testing.T) {
	r := &fakeRunner{}
	s := New()
	s.SetRunner(r)

	if err := s.Save(newSecret(t, "topsecret123")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(r.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(r.calls))
	}
	for _, arg := range r.calls[0] {
		if strings.Contains(arg, "topsecret123") {
			t.Fatalf("secret leaked into argv: %v", r.calls[0])
		}
	}
	if !strings.Contains(r.stdins[0], "topsecret123") {
		t.Error("secret missing from stdin command")
	}
	if !strings.Contains(r.stdins[0], "-U") {
		t.Error("save should overwrite existing items (-U)")
	}
	if !strings.Contains(r.stdins[0], DefaultService) || !strings.Contains(r.stdins[0], DefaultAccount) {
		t.Error("stdin command missing service/account pair")
	}
}

func TestSaveFailureCarriesStderr(t *testing.T) {
	r := &fakeRunner{stderr: []byte("security: keychain locked"), err: errors.New("exit status 1")}
	s := New()
	s.SetRunner(r)

	err := s.Save(newSecret(t, "pw"))
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "keychain locked") {
		t.Errorf("error %q missing captured stderr", err)
	}
}

func TestLoad(t *testing.T) {
	r := &fakeRunner{stdout: []byte("storedpw\n")}
	s := New()
	s.SetRunner(r)

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer got.Wipe()

	if string(got.Bytes()) != "storedpw" {
		t.Errorf("loaded %q, want %q", got.Bytes(), "storedpw")
	}
	call := r.calls[0]
	if call[1] != "find-generic-password" {
		t.Errorf("unexpected command %v", call)
	}
}

func TestLoadNotFound(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 44")}
	s := New()
	s.SetRunner(r)

	if _, err := s.Load(); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
