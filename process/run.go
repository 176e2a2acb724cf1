package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

const maxStderrInError = 512

// ExitError reports a process that exited non-zero.
type ExitError struct {
	Binary   string
	ExitCode int
	// Stderr is the tail of the process's standard error.
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("process: %s exited with code %d", e.Binary, e.ExitCode)
	}
	return fmt.Sprintf("process: %s exited with code %d: %s", e.Binary, e.ExitCode, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, the process group gets SIGTERM, then SIGKILL
// after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // callers build args from validated input
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
		}
		return result, &ExitError{
			Binary:   cmd.Binary,
			ExitCode: result.ExitCode,
			Stderr:   tail(result.Stderr, maxStderrInError),
			Err:      err,
		}
	}
	return result, nil
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}
