package backup

import "errors"

// Sentinel errors returned by backup operations.
var (
	// ErrEmptyPassword indicates no password was supplied.
	ErrEmptyPassword = errors.New("backup: password must not be empty")

	// ErrInvalidFormat indicates the file is not a journal backup.
	ErrInvalidFormat = errors.New("backup: invalid backup file format")

	// ErrUnsupportedVersion indicates a backup from a newer format.
	ErrUnsupportedVersion = errors.New("backup: unsupported backup version")

	// ErrWrongPassword indicates decryption failed, almost always a wrong
	// password (or a tampered file).
	ErrWrongPassword = errors.New("backup: wrong password or corrupted backup")
)
