package exec

import (
	"context"
	"os/exec"
)

// Runner runs an external program and returns its combined stdout/stderr
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandRunner runs programs with os/exec
type CommandRunner struct{}

// NewCommandRunner create CommandRunner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run executes name with args, the output is returned even when the command fails
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
