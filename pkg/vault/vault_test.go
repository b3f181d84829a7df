package vault

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tpabla/journal-tui/pkg/secret"
)

// fakeRunner simulates hdiutil against the real filesystem: create touches
// the image file, attach makes the mount point, detach removes it.
type fakeRunner struct {
	calls      [][]string
	stdins     [][]byte
	failOn     map[string]string // subcommand -> stderr to fail with
	failedOnce map[string]bool   // subcommand -> fail only the first call
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{failOn: map[string]string{}, failedOnce: map[string]bool{}}
}

func (f *fakeRunner) Run(name string, stdin []byte, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.stdins = append(f.stdins, append([]byte(nil), stdin...))

	sub := args[0]
	force := len(args) > 0 && args[len(args)-1] == "-force"
	if msg, ok := f.failOn[sub]; ok && !force {
		if f.failedOnce[sub] {
			delete(f.failOn, sub)
		}
		return nil, []byte(msg), errors.New("exit status 1")
	}

	// Detach parks the mount directory next to the mount point so volume
	// contents survive a remount, like a real image would.
	switch sub {
	case "create":
		return nil, nil, os.WriteFile(args[len(args)-1], []byte("dmg"), 0600)
	case "attach":
		mp := args[len(args)-1]
		if _, err := os.Stat(mp + ".detached"); err == nil {
			return nil, nil, os.Rename(mp+".detached", mp)
		}
		return nil, nil, os.MkdirAll(mp, 0700)
	case "detach":
		mp := args[1]
		return nil, nil, os.Rename(mp, mp+".detached")
	}
	return nil, nil, nil
}

func (f *fakeRunner) count(sub string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) > 1 && c[1] == sub {
			n++
		}
	}
	return n
}

// memStore is an in-memory SecretStore.
type memStore struct {
	saved []byte
}

func (s *memStore) Save(sec *secret.Secret) error {
	s.saved = append([]byte(nil), sec.Bytes()...)
	return nil
}

func (s *memStore) Load() (*secret.Secret, error) {
	if s.saved == nil {
		return nil, errors.New("not found")
	}
	return secret.New(append([]byte(nil), s.saved...))
}

func newTestManager(t *testing.T) (*Manager, *fakeRunner, *memStore) {
	t.Helper()
	base := t.TempDir()
	m := New(base, "TestVault")
	m.MountPoint = filepath.Join(base, "mnt", "TestVault")
	r := newFakeRunner()
	m.SetRunner(r)
	store := &memStore{}
	m.SetSecretStore(store)
	return m, r, store
}

func TestCreateEncrypted(t *testing.T) {
	m, r, store := newTestManager(t)

	if m.Exists() {
		t.Fatal("image should not exist yet")
	}
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}

	if !m.Exists() {
		t.Error("image file was not created")
	}
	if m.IsMounted() {
		t.Error("volume should be unmounted after creation")
	}
	if store.saved == nil {
		t.Error("secret was not persisted to the store")
	}
	if r.count("create") != 1 || r.count("attach") != 1 || r.count("detach") != 1 {
		t.Errorf("unexpected hdiutil calls: %v", r.calls)
	}

	// Remounting must reveal the entries directory materialized at creation.
	if err := m.MountWithStore(); err != nil {
		t.Fatalf("MountWithStore failed: %v", err)
	}
	if _, err := os.Stat(m.EntriesPath()); err != nil {
		t.Errorf("entries directory missing after remount: %v", err)
	}
}

func TestCreateEncryptedAlreadyExists(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}
	if err := m.CreateEncrypted(); err != ErrImageExists {
		t.Errorf("expected ErrImageExists, got %v", err)
	}
}

func TestCreateSecretNeverInArgs(t *testing.T) {
	m, r, store := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}

	sec := string(store.saved)
	for _, call := range r.calls {
		for _, arg := range call {
			if strings.Contains(arg, sec) {
				t.Fatalf("secret leaked into argv: %v", call)
			}
		}
	}
	// The create call's stdin must carry the secret, without a trailing
	// newline.
	if string(r.stdins[0]) != sec {
		t.Errorf("create stdin = %q, want raw secret", r.stdins[0])
	}
	// The attach call's stdin is newline-terminated.
	if string(r.stdins[1]) != sec+"\n" {
		t.Errorf("attach stdin = %q, want secret + newline", r.stdins[1])
	}
}

func TestCreateFailureCarriesStderr(t *testing.T) {
	m, r, _ := newTestManager(t)
	r.failOn["create"] = "hdiutil: create failed - not enough space"

	err := m.CreateEncrypted()
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("expected ErrCreateFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "not enough space") {
		t.Errorf("error %q missing captured stderr", err)
	}
}

func TestMountIdempotent(t *testing.T) {
	m, r, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}

	if err := m.MountWithStore(); err != nil {
		t.Fatalf("first mount failed: %v", err)
	}
	attaches := r.count("attach")
	if err := m.MountWithStore(); err != nil {
		t.Fatalf("second mount failed: %v", err)
	}
	if r.count("attach") != attaches {
		t.Error("second mount ran hdiutil again")
	}
}

func TestMountMissingImage(t *testing.T) {
	m, _, _ := newTestManager(t)
	s, err := secret.New([]byte("pw"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Mount(s); err != ErrImageMissing {
		t.Errorf("expected ErrImageMissing, got %v", err)
	}
}

func TestUnmountIdempotent(t *testing.T) {
	m, r, _ := newTestManager(t)

	if err := m.Unmount(); err != nil {
		t.Fatalf("Unmount when not mounted should succeed, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("Unmount ran external commands while not mounted: %v", r.calls)
	}
}

func TestUnmountForceEscalation(t *testing.T) {
	m, r, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}
	if err := m.MountWithStore(); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	// Graceful detach fails once; the forced retry succeeds.
	r.failOn["detach"] = "hdiutil: detach failed - resource busy"
	r.failedOnce["detach"] = true

	if err := m.Unmount(); err != nil {
		t.Fatalf("Unmount with force fallback failed: %v", err)
	}
	last := r.calls[len(r.calls)-1]
	if last[len(last)-1] != "-force" {
		t.Errorf("expected forced detach, got %v", last)
	}
}

func TestMigrateEntries(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatalf("CreateEncrypted failed: %v", err)
	}
	if err := m.MountWithStore(); err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	src := t.TempDir()
	for _, name := range []string{"one.md", "two.md", "ignore.txt"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("# x\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	n, err := m.MigrateEntries(src, "")
	if err != nil {
		t.Fatalf("MigrateEntries failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 entries migrated, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(m.EntriesPath(), "one.md")); err != nil {
		t.Errorf("migrated file missing: %v", err)
	}
}

func TestMigrateEntriesMatch(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatal(err)
	}
	if err := m.MountWithStore(); err != nil {
		t.Fatal(err)
	}

	src := t.TempDir()
	for _, name := range []string{"2024_jan.md", "2025_feb.md"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("# x\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	n, err := m.MigrateEntries(src, "2025_*")
	if err != nil {
		t.Fatalf("MigrateEntries failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 match, got %d", n)
	}
}

func TestMigrateEntriesMissingSource(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.CreateEncrypted(); err != nil {
		t.Fatal(err)
	}
	if err := m.MountWithStore(); err != nil {
		t.Fatal(err)
	}

	n, err := m.MigrateEntries(filepath.Join(t.TempDir(), "nope"), "")
	if err != nil {
		t.Fatalf("missing source should not error, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 entries, got %d", n)
	}
	if _, err := os.Stat(m.EntriesPath()); err != nil {
		t.Errorf("destination directory should exist regardless: %v", err)
	}
}

func TestMigrateEntriesRequiresMount(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, err := m.MigrateEntries(t.TempDir(), ""); err != ErrNotMounted {
		t.Errorf("expected ErrNotMounted, got %v", err)
	}
}
