// Package process runs external tools such as ffmpeg as subprocesses with
// context-driven termination.
package process

import (
	"context"
	"io"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 if the process was killed.
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. Tests substitute fakes for the real Executor.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// Config sets Executor defaults.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each execution. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Executor is the Runner backed by os/exec.
type Executor struct {
	config Config
}

// NewExecutor creates an Executor.
func NewExecutor(cfg Config) *Executor {
	return &Executor{config: cfg}
}

// Run executes cmd, applying the executor's grace period and timeout.
func (e *Executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && e.config.GracePeriod > 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}
	return Run(ctx, cmd)
}

var _ Runner = (*Executor)(nil)
