package vault

import (
	"bytes"
	"os/exec"
)

// Runner executes an external command, feeding it stdin and capturing both
// output streams. It exists so tests can substitute the privileged disk
// tooling with a fake.
type Runner interface {
	Run(name string, stdin []byte, args ...string) (stdout, stderr []byte, err error)
}

// execRunner is the real Runner backed by os/exec. Secrets travel only over
// the child's stdin pipe, never in the argument list, so they cannot show up
// in process listings.
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
