package vc

import (
	"context"
	"testing"

	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStamper(t *testing.T) {
	t.Run("runs when installed", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.CreateFile("/paper/vc", "#!/bin/sh")
		fs.CreateFile("/paper/vc-git.awk", "")
		exec := &mocks.MockCommandExecutor{}

		s := NewStamper(fs, exec, "/paper", nil)
		assert.True(t, s.Exists())
		require.NoError(t, s.Run(context.Background()))
		require.Len(t, exec.Calls, 1)
		assert.Equal(t, []string{"./vc"}, exec.Calls[0].Command)
		assert.Equal(t, "/paper", exec.Calls[0].Dir)
	})

	t.Run("awk helper missing", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.CreateFile("/paper/vc", "#!/bin/sh")
		exec := &mocks.MockCommandExecutor{}

		s := NewStamper(fs, exec, "/paper", nil)
		assert.False(t, s.Exists())
		require.NoError(t, s.Run(context.Background()))
		assert.Empty(t, exec.Calls)
	})

	t.Run("script fails", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.CreateFile("/paper/vc", "#!/bin/sh")
		fs.CreateFile("/paper/vc-git.awk", "")
		exec := &mocks.MockCommandExecutor{
			RunFunc: func(context.Context, []string, string) (*executor.Result, error) {
				return &executor.Result{ExitCode: 1, Stderr: "fatal: not a git repository\n"}, nil
			},
		}

		err := NewStamper(fs, exec, "/paper", nil).Run(context.Background())
		var exitErr *executor.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, err.Error(), "not a git repository")
	})
}
