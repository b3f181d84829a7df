package backup

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// MagicNumber identifies journal backup files: "JRNL_BKP".
var MagicNumber = [8]byte{'J', 'R', 'N', 'L', '_', 'B', 'K', 'P'}

// FormatVersion is the current backup format version.
const FormatVersion = 1

// maxHeaderSize bounds the header length field against corrupt files.
const maxHeaderSize = 1 << 20

// KDFParams contains Argon2id key derivation parameters.
type KDFParams struct {
	Salt        []byte `json:"salt"`
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

// Header is the plaintext metadata preceding the encrypted payload.
type Header struct {
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	EntryCount int       `json:"entry_count"`
	KDF        KDFParams `json:"kdf"`
	Nonce      []byte    `json:"nonce"`
}

// writeHeader writes the magic number, a length-prefixed JSON header.
func writeHeader(w io.Writer, header *Header) error {
	if _, err := w.Write(MagicNumber[:]); err != nil {
		return fmt.Errorf("backup: failed to write magic number: %w", err)
	}

	data, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("backup: failed to marshal header: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("backup: failed to write header length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("backup: failed to write header: %w", err)
	}
	return nil
}

// readHeader validates magic and version, returning the header and the
// remaining bytes (the encrypted payload).
func readHeader(data []byte) (*Header, []byte, error) {
	if len(data) < len(MagicNumber)+4 {
		return nil, nil, ErrInvalidFormat
	}
	if !bytes.Equal(data[:len(MagicNumber)], MagicNumber[:]) {
		return nil, nil, ErrInvalidFormat
	}
	data = data[len(MagicNumber):]

	size := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if size > maxHeaderSize || int(size) > len(data) {
		return nil, nil, ErrInvalidFormat
	}

	var header Header
	if err := json.Unmarshal(data[:size], &header); err != nil {
		return nil, nil, fmt.Errorf("backup: corrupt header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, header.Version)
	}
	return &header, data[size:], nil
}
