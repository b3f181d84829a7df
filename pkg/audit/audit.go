// Package audit records gate and vault lifecycle events as JSONL with an
// HMAC chain for tamper detection. The log never contains secrets or entry
// content, only which operations ran and how they ended.
package audit

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/hkdf"
)

// MinDiskSpace is the minimum free space required before an audit write.
const MinDiskSpace = 1024 * 1024

// Operation types.
const (
	OpGateSuccess   = "gate.success"
	OpGateFailed    = "gate.failed"
	OpGateCancelled = "gate.cancelled"

	OpVaultCreate  = "vault.create"
	OpVaultMount   = "vault.mount"
	OpVaultUnmount = "vault.unmount"
	OpVaultMigrate = "vault.migrate"

	OpBackupCreate  = "backup.create"
	OpBackupRestore = "backup.restore"
)

// Result values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultDenied  = "denied"
)

const (
	keyFileName  = "audit.key"
	metaFileName = "audit.meta"
)

// Event is a single audit record.
type Event struct {
	Version   int    `json:"v"`
	Timestamp string `json:"ts"` // RFC 3339 nanosecond precision
	Operation string `json:"op"`
	SessionID string `json:"session"`
	Result    string `json:"result"`
	Detail    string `json:"detail,omitempty"`
	Chain     Chain  `json:"chain"`
}

// Chain links each record to its predecessor via HMAC.
type Chain struct {
	Sequence int64  `json:"seq"`
	PrevHash string `json:"prev"`
	HMAC     string `json:"hmac"`
}

// Logger appends audit events to monthly JSONL files under one directory.
// Safe for concurrent use.
type Logger struct {
	path string

	mu        sync.Mutex
	hmacKey   []byte
	sequence  int64
	prevHash  string
	sessionID string
}

// NewLogger creates a logger writing under dir. The HMAC key is derived from
// a random key file beside the log, created on first use, so chain
// verification does not depend on the vault secret.
func NewLogger(dir string) *Logger {
	return &Logger{
		path:      dir,
		prevHash:  "genesis",
		sessionID: newSessionID(),
	}
}

// Log records one event. It returns an error rather than panicking, but
// callers are expected to treat audit failures as warnings: a broken audit
// log must never lock the user out of their journal.
func (l *Logger) Log(op, result, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.path, 0700); err != nil {
		return fmt.Errorf("audit: failed to create directory: %w", err)
	}
	if err := l.ensureKey(); err != nil {
		return err
	}
	if err := l.checkDiskSpace(); err != nil {
		return err
	}

	event := Event{
		Version:   1,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Operation: op,
		SessionID: l.sessionID,
		Result:    result,
		Detail:    detail,
	}

	l.sequence++
	event.Chain.Sequence = l.sequence
	event.Chain.PrevHash = l.prevHash

	mac := hmac.New(sha256.New, l.hmacKey)
	mac.Write(recordData(&event))
	event.Chain.HMAC = hex.EncodeToString(mac.Sum(nil))
	l.prevHash = event.Chain.HMAC

	if err := l.writeEvent(&event); err != nil {
		return err
	}
	return l.saveChainState()
}

// Success records a successful operation.
func (l *Logger) Success(op string) error { return l.Log(op, ResultSuccess, "") }

// Error records a failed operation with its error text.
func (l *Logger) Error(op string, opErr error) error {
	return l.Log(op, ResultError, opErr.Error())
}

// Denied records a denied or cancelled operation.
func (l *Logger) Denied(op, reason string) error { return l.Log(op, ResultDenied, reason) }

// Verify walks every record in sequence order and recomputes the chain.
// It reports the number of verified records, or an error at the first break.
func (l *Logger) Verify() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureKey(); err != nil {
		return 0, err
	}

	files, err := filepath.Glob(filepath.Join(l.path, "*.jsonl"))
	if err != nil {
		return 0, fmt.Errorf("audit: failed to list log files: %w", err)
	}
	sortStrings(files)

	prev := "genesis"
	count := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return count, fmt.Errorf("audit: failed to read %s: %w", file, err)
		}
		for _, line := range splitLines(data) {
			var event Event
			if err := json.Unmarshal(line, &event); err != nil {
				return count, fmt.Errorf("audit: corrupt record after %d entries: %w", count, err)
			}
			if event.Chain.PrevHash != prev {
				return count, fmt.Errorf("audit: chain break at sequence %d", event.Chain.Sequence)
			}
			mac := hmac.New(sha256.New, l.hmacKey)
			mac.Write(recordData(&event))
			if got := hex.EncodeToString(mac.Sum(nil)); got != event.Chain.HMAC {
				return count, fmt.Errorf("audit: HMAC mismatch at sequence %d", event.Chain.Sequence)
			}
			prev = event.Chain.HMAC
			count++
		}
	}
	return count, nil
}

// ensureKey loads or creates the HMAC key file, and restores chain state.
// Must hold mu.
func (l *Logger) ensureKey() error {
	if l.hmacKey != nil {
		return nil
	}

	keyPath := filepath.Join(l.path, keyFileName)
	raw, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		raw = make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("audit: failed to generate key: %w", err)
		}
		if err := os.MkdirAll(l.path, 0700); err != nil {
			return fmt.Errorf("audit: failed to create directory: %w", err)
		}
		if err := os.WriteFile(keyPath, raw, 0600); err != nil {
			return fmt.Errorf("audit: failed to save key: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("audit: failed to read key: %w", err)
	}

	r := hkdf.New(sha256.New, raw, nil, []byte("journal-audit-v1"))
	l.hmacKey = make([]byte, 32)
	if _, err := r.Read(l.hmacKey); err != nil {
		return fmt.Errorf("audit: failed to derive HMAC key: %w", err)
	}

	if err := l.loadChainState(); err != nil {
		// First run; start a fresh chain.
		l.sequence = 0
		l.prevHash = "genesis"
	}
	return nil
}

func recordData(event *Event) []byte {
	return []byte(fmt.Sprintf("%d|%s|%s|%s|%s|%s|%d|%s",
		event.Version,
		event.Timestamp,
		event.Operation,
		event.SessionID,
		event.Result,
		event.Detail,
		event.Chain.Sequence,
		event.Chain.PrevHash,
	))
}

func (l *Logger) writeEvent(event *Event) error {
	name := time.Now().UTC().Format("2006-01") + ".jsonl"
	f, err := os.OpenFile(filepath.Join(l.path, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("audit: failed to open log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("audit: failed to write event: %w", err)
	}
	return nil
}

type chainState struct {
	Sequence int64  `json:"seq"`
	PrevHash string `json:"prev"`
}

func (l *Logger) loadChainState() error {
	data, err := os.ReadFile(filepath.Join(l.path, metaFileName))
	if err != nil {
		return err
	}
	var state chainState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	l.sequence = state.Sequence
	l.prevHash = state.PrevHash
	return nil
}

func (l *Logger) saveChainState() error {
	data, err := json.Marshal(chainState{Sequence: l.sequence, PrevHash: l.prevHash})
	if err != nil {
		return fmt.Errorf("audit: failed to marshal chain state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.path, metaFileName), data, 0600); err != nil {
		return fmt.Errorf("audit: failed to save chain state: %w", err)
	}
	return nil
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
