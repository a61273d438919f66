package filesystem

import (
	stderrors "errors"
	"os/exec"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// execRunner implements types.Runner with os/exec
type execRunner struct{}

// NewExecRunner returns a runner that spawns real processes
func NewExecRunner() types.Runner {
	return &execRunner{}
}

func (r *execRunner) Run(name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)

	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, errors.ErrCommandFailed, "%s failed", name).
			WithDetail("command", name).
			WithDetail("args", args).
			WithDetail("output", string(out))
	}
	return out, nil
}

func (r *execRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrExecutableMissing, "%s not found on PATH", name)
	}
	return path, nil
}

// ExitCode extracts the process exit status from a Run error. It
// returns -1 when the process could not be started at all.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
