package run

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external tools on behalf of build actions. Implementations
// must treat a non-zero exit code as an error carrying the tool's captured
// output, so failures can be reported against the target that spawned them.
type Runner interface {
	// Run executes name with args in dir, discarding stdout on success.
	Run(ctx context.Context, dir string, name string, args ...string) error

	// Output executes name with args in dir and returns its stdout.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// Exec is the production Runner. Each call spawns the tool and blocks until
// it exits.
type Exec struct{}

// NewExec creates a Runner backed by os/exec.
func NewExec() *Exec {
	return &Exec{}
}

// Run executes the command and waits for completion. On a non-zero exit the
// returned error is a *CommandError containing the combined output.
func (e *Exec) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return &CommandError{
			Command: commandLine(name, args),
			Output:  strings.TrimSpace(string(output)),
			Err:     err,
		}
	}
	return nil
}

// Output executes the command and returns its stdout. Stderr is captured
// separately and only surfaces in the error diagnostic.
func (e *Exec) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.Output()
	if err != nil {
		return nil, &CommandError{
			Command: commandLine(name, args),
			Output:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout, nil
}

// CommandError reports a failed external invocation together with the tool's
// captured output.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("command '%s' failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command '%s' failed: %v\n%s", e.Command, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsCommandError checks if an error is a *CommandError.
func IsCommandError(err error) bool {
	_, ok := err.(*CommandError)
	return ok
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
