package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/preprint/internal/config"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun(t *testing.T) {
	skipOnWindows(t)
	cfg := config.DefaultConfig()
	exec := NewOSCommandExecutor(cfg, nil)

	t.Run("SimpleCommand", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"echo", "hello"}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hello" {
			t.Errorf("expected stdout 'hello', got %q", res.Stdout)
		}
		if res.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", res.ExitCode)
		}
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		_, err := exec.Run(context.Background(), []string{}, "", nil)
		if err != os.ErrInvalid {
			t.Errorf("expected os.ErrInvalid, got %v", err)
		}
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"false"}, "", nil)
		if err == nil {
			t.Error("expected error for non-zero exit")
		}
		if res.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", res.ExitCode)
		}
	})

	t.Run("MissingBinary", func(t *testing.T) {
		_, err := exec.Run(context.Background(), []string{"definitely-not-latexmk-xyz"}, "", nil)
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected CommandError, got %T: %v", err, err)
		}
		if cmdErr.Stage != "start" {
			t.Errorf("expected stage start, got %s", cmdErr.Stage)
		}
	})

	t.Run("WorkingDirectory", func(t *testing.T) {
		dir := t.TempDir()
		res, err := exec.Run(context.Background(), []string{"pwd"}, dir, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(strings.TrimSpace(res.Stdout), strings.TrimPrefix(dir, "/private")) {
			t.Errorf("expected pwd %s, got %q", dir, res.Stdout)
		}
	})

	t.Run("LargeOutput", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Exec.MaxOutputSize = 10
		exec := NewOSCommandExecutor(cfg, nil)

		res, err := exec.Run(context.Background(), []string{"echo", "123456789012345"}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Truncated {
			t.Error("expected output to be truncated")
		}
		if res.Stdout != "789012345\n" {
			t.Errorf("expected the last 10 bytes of stdout, got %q", res.Stdout)
		}
	})
}

func TestRunToWriter(t *testing.T) {
	skipOnWindows(t)
	cfg := config.DefaultConfig()
	cfg.Exec.MaxOutputSize = 4
	exec := NewOSCommandExecutor(cfg, nil)

	var buf bytes.Buffer
	res, err := exec.RunToWriter(context.Background(), []string{"sh", "-c", "echo 0123456789; echo warn >&2"}, "", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "0123456789\n" {
		t.Errorf("stdout should not be truncated, got %q", buf.String())
	}
	if res.Stderr != "arn\n" || !res.Truncated {
		t.Errorf("expected the tail of stderr, got %q (truncated=%v)", res.Stderr, res.Truncated)
	}
}

func TestRunWithTimeout(t *testing.T) {
	skipOnWindows(t)
	cfg := config.DefaultConfig()
	cfg.Exec.GracefulShutdownMs = 100
	exec := NewOSCommandExecutor(cfg, nil)

	t.Run("CompletesBeforeTimeout", func(t *testing.T) {
		res, err := exec.RunWithTimeout(context.Background(), []string{"echo", "hi"}, "", nil, 1*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(res.Stdout) != "hi" {
			t.Errorf("expected stdout 'hi', got %q", res.Stdout)
		}
	})

	t.Run("TimeoutKillsProcess", func(t *testing.T) {
		_, err := exec.RunWithTimeout(context.Background(), []string{"sleep", "10"}, "", nil, 100*time.Millisecond)
		if err != ErrTimeout {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()
		_, err := exec.RunWithTimeout(ctx, []string{"sleep", "10"}, "", nil, 5*time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCheck(t *testing.T) {
	skipOnWindows(t)
	exec := NewOSCommandExecutor(config.DefaultConfig(), nil)

	t.Run("Success", func(t *testing.T) {
		cmd := []string{"true"}
		res, err := exec.Run(context.Background(), cmd, "", nil)
		if err := Check(cmd, res, err); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		cmd := []string{"sh", "-c", "echo '! LaTeX Error' >&2; exit 12"}
		res, err := exec.Run(context.Background(), cmd, "", nil)
		err = Check(cmd, res, err)
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("expected ExitError, got %T: %v", err, err)
		}
		if exitErr.ExitCode != 12 {
			t.Errorf("expected exit code 12, got %d", exitErr.ExitCode)
		}
		if !strings.Contains(err.Error(), "! LaTeX Error") {
			t.Errorf("expected stderr tail in message, got %q", err.Error())
		}
	})

	t.Run("StartFailurePassesThrough", func(t *testing.T) {
		cause := &CommandError{Cmd: "latexdiff", Stage: "start", Cause: os.ErrNotExist}
		if err := Check([]string{"latexdiff"}, nil, cause); err != cause {
			t.Errorf("expected original error, got %v", err)
		}
	})
}

func TestTailBuffer(t *testing.T) {
	t.Run("UnderLimit", func(t *testing.T) {
		b := newTailBuffer(10, 5)
		n, err := b.Write([]byte("abc"))
		if err != nil || n != 3 {
			t.Errorf("unexpected write result: %v, %d", err, n)
		}
		if b.String() != "abc" || b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})

	t.Run("ExactLimit", func(t *testing.T) {
		b := newTailBuffer(3, 5)
		_, _ = b.Write([]byte("abc"))
		if b.String() != "abc" || b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})

	t.Run("KeepsTail", func(t *testing.T) {
		b := newTailBuffer(5, 5)
		_, _ = b.Write([]byte("abcdef"))
		if b.String() != "bcdef" || !b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})

	t.Run("KeepsTailAcrossWrites", func(t *testing.T) {
		b := newTailBuffer(5, 5)
		for _, chunk := range []string{"abc", "def", "g"} {
			_, _ = b.Write([]byte(chunk))
		}
		if b.String() != "cdefg" || !b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})

	t.Run("BinaryDetection", func(t *testing.T) {
		b := newTailBuffer(10, 5)
		_, _ = b.Write([]byte{'a', 0, 'b'})
		_, _ = b.Write([]byte("more"))
		if b.String() != "[binary output]" || !b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})

	t.Run("NullAfterSniffWindowIsKept", func(t *testing.T) {
		b := newTailBuffer(10, 2)
		_, _ = b.Write([]byte("ab"))
		_, _ = b.Write([]byte{'c', 0})
		if b.String() != "abc\x00" || b.Truncated() {
			t.Errorf("unexpected buffer state: %q, %v", b.String(), b.Truncated())
		}
	})
}
