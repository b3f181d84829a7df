// Package vault manages the encrypted disk image that holds journal entries.
// The image is created, attached and detached through hdiutil; the unlock
// secret is always delivered over stdin. Mount state is never cached: the
// mount point's existence on the filesystem is the single source of truth, so
// an external detach can never leave this package believing the vault is
// still open.
package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tpabla/journal-tui/pkg/secret"
)

// Defaults for the encrypted image.
const (
	DefaultVolumeName = "JournalVault"
	DefaultImageSize  = "100m"
	ImageFileName     = "vault.dmg"
	EntriesDirName    = "entries"
	EntryExt          = ".md"

	fileMode = 0600
	dirMode  = 0700
)

// Errors
var (
	ErrNotMounted    = errors.New("vault: volume must be mounted first")
	ErrImageMissing  = errors.New("vault: encrypted image does not exist")
	ErrImageExists   = errors.New("vault: encrypted image already exists")
	ErrCreateFailed  = errors.New("vault: image creation failed")
	ErrMountFailed   = errors.New("vault: mount failed")
	ErrUnmountFailed = errors.New("vault: unmount failed")
	ErrNoSecretStore = errors.New("vault: no secret store configured")
)

// SecretStore persists and retrieves the unlock secret. Satisfied by
// keychain.Store.
type SecretStore interface {
	Save(s *secret.Secret) error
	Load() (*secret.Secret, error)
}

// Manager owns one encrypted volume: the image file, its volume name, and the
// mount point derived from that name.
type Manager struct {
	ImagePath  string
	VolumeName string
	MountPoint string
	ImageSize  string

	run     Runner
	secrets SecretStore
}

// New creates a Manager for an image under baseDir with the given volume
// name. The mount point is fixed by the volume name.
func New(baseDir, volumeName string) *Manager {
	if volumeName == "" {
		volumeName = DefaultVolumeName
	}
	return &Manager{
		ImagePath:  filepath.Join(baseDir, ImageFileName),
		VolumeName: volumeName,
		MountPoint: filepath.Join("/Volumes", volumeName),
		ImageSize:  DefaultImageSize,
		run:        execRunner{},
	}
}

// SetRunner replaces the external-process runner, for tests.
func (m *Manager) SetRunner(r Runner) { m.run = r }

// SetSecretStore attaches the credential store used by CreateEncrypted and
// MountWithStore.
func (m *Manager) SetSecretStore(s SecretStore) { m.secrets = s }

// Exists reports whether the encrypted image file exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.ImagePath)
	return err == nil
}

// IsMounted reports whether the volume is currently attached. Derived from
// the filesystem on every call.
func (m *Manager) IsMounted() bool {
	_, err := os.Stat(m.MountPoint)
	return err == nil
}

// EntriesPath returns the entries directory inside the mounted volume.
func (m *Manager) EntriesPath() string {
	return filepath.Join(m.MountPoint, EntriesDirName)
}

// CreateEncrypted creates the encrypted image with a freshly generated
// secret, mounts it once to materialize the entries directory, unmounts, and
// persists the secret to the configured store. The returned error carries
// hdiutil's stderr on failure.
func (m *Manager) CreateEncrypted() error {
	s, err := secret.Generate(secret.GeneratedLength)
	if err != nil {
		return err
	}
	defer s.Wipe()
	return m.CreateEncryptedWith(s)
}

// CreateEncryptedWith is CreateEncrypted with a caller-supplied secret. The
// caller retains ownership of s and is responsible for wiping it.
func (m *Manager) CreateEncryptedWith(s *secret.Secret) error {
	if m.Exists() {
		return ErrImageExists
	}
	if m.secrets == nil {
		return ErrNoSecretStore
	}

	if err := os.MkdirAll(filepath.Dir(m.ImagePath), dirMode); err != nil {
		return fmt.Errorf("vault: failed to create base directory: %w", err)
	}

	// -stdinpass makes hdiutil read the password from stdin without a
	// terminal prompt; the password must not be newline-terminated here.
	_, stderr, err := m.run.Run("hdiutil", s.Bytes(),
		"create",
		"-size", m.ImageSize,
		"-fs", "APFS",
		"-encryption", "AES-256",
		"-stdinpass",
		"-volname", m.VolumeName,
		m.ImagePath,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCreateFailed, diag(stderr, err))
	}

	// Mount once so the entries directory exists inside the volume from the
	// very first unlock.
	if err := m.Mount(s); err != nil {
		return err
	}
	if err := os.MkdirAll(m.EntriesPath(), dirMode); err != nil {
		return fmt.Errorf("vault: failed to create entries directory: %w", err)
	}
	if err := m.Unmount(); err != nil {
		return err
	}

	return m.secrets.Save(s)
}

// Mount attaches the image using the given secret. Idempotent: if the mount
// point already exists no external command runs.
func (m *Manager) Mount(s *secret.Secret) error {
	if m.IsMounted() {
		return nil
	}
	if !m.Exists() {
		return ErrImageMissing
	}

	_, stderr, err := m.run.Run("hdiutil", append(s.Bytes(), '\n'),
		"attach",
		m.ImagePath,
		"-stdinpass",
		"-mountpoint", m.MountPoint,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMountFailed, diag(stderr, err))
	}
	return nil
}

// MountWithStore loads the secret from the credential store and mounts.
// Idempotent like Mount.
func (m *Manager) MountWithStore() error {
	if m.IsMounted() {
		return nil
	}
	if m.secrets == nil {
		return ErrNoSecretStore
	}
	s, err := m.secrets.Load()
	if err != nil {
		return err
	}
	defer s.Wipe()
	return m.Mount(s)
}

// Unmount detaches the volume. A no-op when not mounted. A failed graceful
// detach is retried once with -force; only the second failure is reported.
func (m *Manager) Unmount() error {
	if !m.IsMounted() {
		return nil
	}

	_, stderr, err := m.run.Run("hdiutil", nil, "detach", m.MountPoint)
	if err == nil {
		return nil
	}

	_, _, forceErr := m.run.Run("hdiutil", nil, "detach", m.MountPoint, "-force")
	if forceErr != nil {
		return fmt.Errorf("%w: %s", ErrUnmountFailed, diag(stderr, err))
	}
	return nil
}

// MigrateEntries copies every entry file from sourceDir into the mounted
// entries directory and returns the count copied. A missing source directory
// is zero entries, not an error. match, when non-empty, is a glob filter
// applied to base filenames.
func (m *Manager) MigrateEntries(sourceDir, match string) (int, error) {
	if !m.IsMounted() {
		return 0, ErrNotMounted
	}

	destDir := m.EntriesPath()
	if err := os.MkdirAll(destDir, dirMode); err != nil {
		return 0, fmt.Errorf("vault: failed to create entries directory: %w", err)
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("vault: failed to read source directory: %w", err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != EntryExt {
			continue
		}
		if match != "" {
			ok, err := filepath.Match(match, e.Name())
			if err != nil {
				return count, fmt.Errorf("vault: invalid pattern %q: %w", match, err)
			}
			if !ok {
				continue
			}
		}
		src := filepath.Join(sourceDir, e.Name())
		dst := filepath.Join(destDir, e.Name())
		if err := copyFile(src, dst); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("vault: failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("vault: failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("vault: failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// diag renders the most useful diagnostic for a failed external command:
// captured stderr when present, otherwise the exec error itself.
func diag(stderr []byte, err error) string {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return msg
	}
	return err.Error()
}
