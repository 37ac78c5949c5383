// Package executor runs the external TeX tools (latexdiff, latexmk, convert, vc)
// and the user's build command.
package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Cyclone1070/preprint/internal/config"
)

// Result is what a finished command left behind. Stdout and Stderr hold the
// last exec.max_output_bytes of each stream.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// OSCommandExecutor runs commands with os/exec.
type OSCommandExecutor struct {
	config *config.Config
	log    *slog.Logger
}

func NewOSCommandExecutor(cfg *config.Config, log *slog.Logger) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &OSCommandExecutor{config: cfg, log: log}
}

// Run executes command in dir and waits for it. Cancelling ctx kills it.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	return f.run(ctx, command, dir, env, nil, 0)
}

// RunWithTimeout is Run with a deadline. When it passes the process gets an
// interrupt, then exec.graceful_shutdown_ms to exit before it is killed. A
// zero timeout uses exec.timeout_s.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = time.Duration(f.config.Exec.TimeoutSeconds) * time.Second
	}
	return f.run(ctx, command, dir, env, nil, timeout)
}

// RunToWriter streams stdout to w without a size cap; stderr is kept as in
// Run. latexdiff output goes through here so a large diff is never cut.
func (f *OSCommandExecutor) RunToWriter(ctx context.Context, command []string, dir string, w io.Writer) (*Result, error) {
	return f.run(ctx, command, dir, nil, w, 0)
}

func (f *OSCommandExecutor) run(ctx context.Context, command []string, dir string, env []string, stdout io.Writer, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}
	f.log.Debug("running command", "cmd", strings.Join(command, " "), "dir", dir, "timeout", timeout)

	limit := int(f.config.Exec.MaxOutputSize)
	outTail := newTailBuffer(limit, sniffBytes)
	errTail := newTailBuffer(limit, sniffBytes)
	if stdout == nil {
		stdout = outTail
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = errTail
	// A TeX tool that forks and leaves a child holding the pipes must not hang Wait.
	cmd.WaitDelay = f.grace()

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Stage: "start", Cause: err}
	}

	err := f.wait(ctx, cmd, timeout)
	return &Result{
		Stdout:    outTail.String(),
		Stderr:    errTail.String(),
		ExitCode:  exitCode(err),
		Truncated: outTail.Truncated() || errTail.Truncated(),
	}, err
}

func (f *OSCommandExecutor) grace() time.Duration {
	return time.Duration(f.config.Exec.GracefulShutdownMs) * time.Millisecond
}

// wait returns cmd.Wait's error, ctx.Err() after a cancel, or ErrTimeout.
func (f *OSCommandExecutor) wait(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case <-deadline:
		f.log.Debug("command timed out, interrupting", "cmd", cmd.Path, "timeout", timeout)
		_ = cmd.Process.Signal(os.Interrupt)
		grace := time.NewTimer(f.grace())
		defer grace.Stop()
		select {
		case <-done:
		case <-grace.C:
			_ = cmd.Process.Kill()
			<-done
		}
		return ErrTimeout
	}
}

// Check turns a Run result into a single error: start failures, timeouts and
// cancellation pass through, a non-zero exit becomes an *ExitError.
func Check(command []string, res *Result, err error) error {
	if res == nil {
		return err
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return err
	}
	if res.ExitCode != 0 {
		return &ExitError{Command: command, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}

// exitCode is the process exit status, or -1 when it never produced one.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
