package pack

import (
	"context"
	"os"

	"github.com/Cyclone1070/preprint/internal/executor"
)

type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	CopyFile(src, dst string) error
	Remove(path string) error
	EnsureDirs(path string) error
}

type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
}
