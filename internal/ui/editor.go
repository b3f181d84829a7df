package ui

import (
	"os"
	"os/exec"
)

// EditorOpener launches command on a file with the terminal handed over to
// the child process. Suitable as Browser.OpenEditor.
func EditorOpener(command string) func(path string) error {
	return func(path string) error {
		cmd := exec.Command(command, path)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
}
