// Package backup writes and restores encrypted snapshots of the journal
// entries directory. A backup is a single file: magic number, a plaintext
// JSON header carrying the KDF parameters, then one AES-256-GCM payload of
// all entry files. The payload key is derived from a password with Argon2id;
// GCM authentication makes tampering detectable without a separate MAC.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tpabla/journal-tui/pkg/crypto"
	"github.com/tpabla/journal-tui/pkg/notes"
)

// payload is the encrypted body: entry filename to raw content.
type payload struct {
	Entries map[string][]byte `json:"entries"`
}

// Create snapshots every entry file under entriesDir into an encrypted
// backup at outPath. Returns the number of entries included.
func Create(entriesDir, outPath string, password []byte) (int, error) {
	if len(password) == 0 {
		return 0, ErrEmptyPassword
	}

	files, err := os.ReadDir(entriesDir)
	if err != nil {
		return 0, fmt.Errorf("backup: failed to read entries directory: %w", err)
	}

	p := payload{Entries: make(map[string][]byte)}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != notes.Ext {
			continue
		}
		content, err := os.ReadFile(filepath.Join(entriesDir, f.Name()))
		if err != nil {
			return 0, fmt.Errorf("backup: failed to read %s: %w", f.Name(), err)
		}
		p.Entries[f.Name()] = content
	}

	plaintext, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("backup: failed to marshal payload: %w", err)
	}
	defer crypto.SecureWipe(plaintext)

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return 0, err
	}
	key := crypto.DeriveKey(password, salt)
	defer crypto.SecureWipe(key)

	ciphertext, nonce, err := crypto.Encrypt(key, plaintext)
	if err != nil {
		return 0, fmt.Errorf("backup: encryption failed: %w", err)
	}

	header := Header{
		Version:    FormatVersion,
		CreatedAt:  time.Now().UTC(),
		EntryCount: len(p.Entries),
		KDF: KDFParams{
			Salt:        salt,
			Memory:      crypto.Argon2Memory,
			Iterations:  crypto.Argon2Time,
			Parallelism: crypto.Argon2Threads,
		},
		Nonce: nonce,
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("backup: failed to create %s: %w", outPath, err)
	}
	if err := writeHeader(out, &header); err != nil {
		out.Close()
		return 0, err
	}
	if _, err := out.Write(ciphertext); err != nil {
		out.Close()
		return 0, fmt.Errorf("backup: failed to write payload: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("backup: failed to close %s: %w", outPath, err)
	}
	return header.EntryCount, nil
}

// Restore decrypts the backup at inPath into destDir, creating it if needed.
// Existing files with the same names are overwritten. Returns the number of
// entries restored.
func Restore(inPath, destDir string, password []byte) (int, error) {
	if len(password) == 0 {
		return 0, ErrEmptyPassword
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("backup: failed to read %s: %w", inPath, err)
	}

	header, body, err := readHeader(data)
	if err != nil {
		return 0, err
	}

	key := crypto.DeriveKey(password, header.KDF.Salt)
	defer crypto.SecureWipe(key)

	plaintext, err := crypto.Decrypt(key, body, header.Nonce)
	if err != nil {
		return 0, ErrWrongPassword
	}
	defer crypto.SecureWipe(plaintext)

	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return 0, fmt.Errorf("backup: corrupt payload: %w", err)
	}

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return 0, fmt.Errorf("backup: failed to create %s: %w", destDir, err)
	}
	for name, content := range p.Entries {
		// Names come from the archive; never let them escape destDir.
		if name != filepath.Base(name) {
			return 0, fmt.Errorf("backup: refusing suspicious entry name %q", name)
		}
		if err := os.WriteFile(filepath.Join(destDir, name), content, 0600); err != nil {
			return 0, fmt.Errorf("backup: failed to restore %s: %w", name, err)
		}
	}
	return len(p.Entries), nil
}
