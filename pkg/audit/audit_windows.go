//go:build windows

package audit

// checkDiskSpace is a no-op on Windows.
func (l *Logger) checkDiskSpace() error {
	return nil
}
