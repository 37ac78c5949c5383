package mocks

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/preprint/internal/executor"
)

// Call records one command invocation.
type Call struct {
	Command []string
	Dir     string
}

// MockCommandExecutor records commands and delegates to optional funcs.
// Without a func, commands succeed with empty output.
type MockCommandExecutor struct {
	mu    sync.Mutex
	Calls []Call

	RunFunc         func(ctx context.Context, command []string, dir string) (*executor.Result, error)
	RunToWriterFunc func(ctx context.Context, command []string, dir string, w io.Writer) (*executor.Result, error)
	// Timeouts records the timeout passed to each RunWithTimeout call.
	Timeouts []time.Duration
}

func (m *MockCommandExecutor) record(command []string, dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Command: append([]string(nil), command...), Dir: dir})
}

func (m *MockCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error) {
	m.record(command, dir)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, command, dir)
	}
	return &executor.Result{}, nil
}

func (m *MockCommandExecutor) RunToWriter(ctx context.Context, command []string, dir string, w io.Writer) (*executor.Result, error) {
	m.record(command, dir)
	if m.RunToWriterFunc != nil {
		return m.RunToWriterFunc(ctx, command, dir, w)
	}
	return &executor.Result{}, nil
}

func (m *MockCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error) {
	m.mu.Lock()
	m.Timeouts = append(m.Timeouts, timeout)
	m.mu.Unlock()
	return m.Run(ctx, command, dir, env)
}

// Commands returns each recorded command joined with spaces.
func (m *MockCommandExecutor) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = strings.Join(c.Command, " ")
	}
	return out
}
