package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrJobTimedOut is returned by Poll when every attempt observed a running job.
var ErrJobTimedOut = errors.New("job still running after poll budget")

// JobState is the closed set of states a polled job can report.
type JobState int

const (
	JobRunning JobState = iota
	JobSucceeded
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// JobStatus is one observation of a remote job. Payload is set only for
// JobSucceeded, Reason only for JobFailed.
type JobStatus[T any] struct {
	State   JobState
	Payload T
	Reason  string
}

// Running reports a job that has not finished yet.
func Running[T any]() JobStatus[T] { return JobStatus[T]{State: JobRunning} }

// Succeeded reports a finished job and its result.
func Succeeded[T any](payload T) JobStatus[T] {
	return JobStatus[T]{State: JobSucceeded, Payload: payload}
}

// Failed reports a job the remote side gave up on.
func Failed[T any](reason string) JobStatus[T] {
	return JobStatus[T]{State: JobFailed, Reason: reason}
}

// JobFailedError is returned by Poll when the job reports failure.
type JobFailedError struct {
	Reason string
}

func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return "job failed"
	}
	return "job failed: " + e.Reason
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollConfig bounds a Poll call.
type PollConfig struct {
	// MaxAttempts is the number of status fetches before giving up.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// Interval is the constant wait between two fetches.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Sleep replaces SleepContext, mainly in tests.
	Sleep Sleeper `yaml:"-" mapstructure:"-"`
	// OnAttempt is called after every fetch that returned a status.
	OnAttempt func(attempt int, state JobState) `yaml:"-" mapstructure:"-"`
}

// Budget is the longest a Poll call can spend sleeping.
func (c PollConfig) Budget() time.Duration {
	if c.MaxAttempts <= 1 {
		return 0
	}
	return time.Duration(c.MaxAttempts-1) * c.Interval
}

// Poll fetches a job status until it succeeds, fails, or MaxAttempts fetches
// have all reported JobRunning. A fetch error ends polling immediately and is
// returned unchanged. There is no sleep after the last attempt.
func Poll[T any](ctx context.Context, cfg PollConfig, fetch func(ctx context.Context) (JobStatus[T], error)) (T, error) {
	var zero T

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Sleep == nil {
		cfg.Sleep = SleepContext
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if cfg.OnAttempt != nil {
			cfg.OnAttempt(attempt, status.State)
		}

		switch status.State {
		case JobSucceeded:
			return status.Payload, nil
		case JobFailed:
			return zero, &JobFailedError{Reason: status.Reason}
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		if err := cfg.Sleep(ctx, cfg.Interval); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w (%d attempts)", ErrJobTimedOut, cfg.MaxAttempts)
}
