package latexdiff

import (
	"context"
	"io"
	"os"

	"github.com/Cyclone1070/preprint/internal/executor"
)

type fileSystem interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	Move(src, dst string) error
	Remove(path string) error
	EnsureDirs(path string) error
}

type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
	RunToWriter(ctx context.Context, command []string, dir string, w io.Writer) (*executor.Result, error)
}
