package watch

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/latexdiff"
	"github.com/Cyclone1070/preprint/internal/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStamper struct {
	calls int
	err   error
}

func (s *stubStamper) Run(context.Context) error {
	s.calls++
	return s.err
}

type stubDiff struct {
	name, master, ref string
	err               error
}

func (s *stubDiff) Run(_ context.Context, name, master, ref string) (*latexdiff.Result, error) {
	s.name, s.master, s.ref = name, master, ref
	if s.err != nil {
		return nil, s.err
	}
	return &latexdiff.Result{Name: name}, nil
}

func TestCompileHandler(t *testing.T) {
	t.Run("stamps then builds", func(t *testing.T) {
		vc := &stubStamper{}
		exec := &mocks.MockCommandExecutor{}
		h := NewCompileHandler(vc, exec, "latexmk -pdf {master}", "paper.tex", "/paper", nil)

		require.NoError(t, h.Handle(context.Background()))
		assert.Equal(t, 1, vc.calls)
		require.Len(t, exec.Calls, 1)
		assert.Equal(t, []string{"sh", "-c", "latexmk -pdf paper.tex"}, exec.Calls[0].Command)
		assert.Equal(t, "/paper", exec.Calls[0].Dir)
		assert.Equal(t, "compile", h.Name())
	})

	t.Run("vc failure does not stop the build", func(t *testing.T) {
		vc := &stubStamper{err: errors.New("awk missing")}
		exec := &mocks.MockCommandExecutor{}
		h := NewCompileHandler(vc, exec, "make", "paper.tex", ".", nil)

		require.NoError(t, h.Handle(context.Background()))
		assert.Len(t, exec.Calls, 1)
	})

	t.Run("build failure", func(t *testing.T) {
		exec := &mocks.MockCommandExecutor{
			RunFunc: func(context.Context, []string, string) (*executor.Result, error) {
				return &executor.Result{ExitCode: 12, Stderr: "! Undefined control sequence.\n"}, nil
			},
		}
		h := NewCompileHandler(&stubStamper{}, exec, "make", "paper.tex", ".", nil)

		err := h.Handle(context.Background())
		var exitErr *executor.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 12, exitErr.ExitCode)
	})
}

func TestDiffHandler(t *testing.T) {
	d := &stubDiff{}
	h := NewDiffHandler(d, "ms/paper.tex", "HEAD")

	require.NoError(t, h.Handle(context.Background()))
	assert.Equal(t, "paper_diff", d.name)
	assert.Equal(t, "ms/paper.tex", d.master)
	assert.Equal(t, "HEAD", d.ref)
	assert.Equal(t, "diff HEAD", h.Name())

	d.err = errors.New("latexdiff missing")
	assert.Error(t, h.Handle(context.Background()))
}
