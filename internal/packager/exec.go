package packager

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandRunner executes an external program and returns its combined output.
// Injectable so packagers that shell out stay testable without the real tool
// on PATH.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run satisfies CommandRunner.
func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("packager: %s: %w: %s", name, err, out)
	}
	return out, nil
}
