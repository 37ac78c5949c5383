package latexdiff

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/gitutil"
	"github.com/Cyclone1070/preprint/internal/tex"
	"github.com/Cyclone1070/preprint/internal/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobMap serves ref -> repo-relative path -> content.
type blobMap map[string]map[string]string

func (b blobMap) ReadBlob(ref, p string) (string, error) {
	content, ok := b[ref][p]
	if !ok {
		return "", &gitutil.NotFoundError{Ref: ref, Path: p}
	}
	return content, nil
}

type fixture struct {
	fs       *mocks.MockFileSystem
	exec     *mocks.MockCommandExecutor
	pipeline *Pipeline
	// inputs captures the flattened files as latexdiff saw them.
	inputs map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := mocks.NewMockFileSystem()
	fs.CreateFile("/repo/ms/paper.tex", "\\documentclass{article}\n\\input{intro} % todo\n\\end{document}\n")
	fs.CreateFile("/repo/ms/intro.tex", "now")

	f := &fixture{fs: fs, exec: &mocks.MockCommandExecutor{}, inputs: map[string]string{}}

	f.exec.RunToWriterFunc = func(_ context.Context, command []string, _ string, w io.Writer) (*executor.Result, error) {
		for _, name := range []string{CurrentFile, PreviousFile} {
			content, _ := fs.Content(name)
			f.inputs[name] = content
		}
		_, err := io.WriteString(w, "DIFF")
		return &executor.Result{}, err
	}
	f.exec.RunFunc = func(_ context.Context, command []string, _ string) (*executor.Result, error) {
		if command[0] == "latexmk" && !slices.Contains(command, "-c") {
			fs.CreateFile("current_abc.pdf", "%PDF")
			fs.CreateFile("current_abcNotes.bib", "")
			fs.CreateFile("current_abc.bbl", "")
		}
		return &executor.Result{}, nil
	}

	p := NewPipeline(fs, f.exec, config.DefaultConfig(), nil)
	p.findRoot = func(string) (string, error) { return "/repo", nil }
	p.openRepo = func(string) (tex.BlobReader, error) {
		return blobMap{"abc": {
			"ms/paper.tex": "\\documentclass{article}\n\\input{intro}\n\\end{document}\n",
			"ms/intro.tex": "then",
		}}, nil
	}
	f.pipeline = p
	return f
}

func TestRun(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "abc")
	require.NoError(t, err)
	assert.Equal(t, "current_abc", res.Name)
	assert.Equal(t, "build/current_abc.pdf", res.PDF)

	assert.Equal(t, "\\documentclass{article}\nnow \n\\end{document}\n", f.inputs[CurrentFile])
	assert.Equal(t, "\\documentclass{article}\nthen\n\\end{document}\n", f.inputs[PreviousFile])

	assert.Equal(t, []string{
		"latexdiff --type=CTRADITIONAL _prev.tex _current.tex",
		"latexmk -f -pdf -bibtex-cond current_abc.tex",
		"latexmk -f -pdf -bibtex-cond -c current_abc.tex",
	}, f.exec.Commands())

	pdf, ok := f.fs.Content("build/current_abc.pdf")
	assert.True(t, ok)
	assert.Equal(t, "%PDF", pdf)

	for _, gone := range []string{CurrentFile, PreviousFile, "current_abc.tex", "current_abc.bbl", "current_abcNotes.bib", "current_abc.pdf"} {
		_, ok := f.fs.Content(gone)
		assert.False(t, ok, gone)
	}
}

func TestRunNamedOutput(t *testing.T) {
	f := newFixture(t)
	f.exec.RunFunc = func(_ context.Context, command []string, _ string) (*executor.Result, error) {
		if !slices.Contains(command, "-c") {
			f.fs.CreateFile("vs_submitted.pdf", "%PDF")
		}
		return &executor.Result{}, nil
	}

	res, err := f.pipeline.Run(context.Background(), "vs_submitted.tex", "/repo/ms/paper.tex", "abc")
	require.NoError(t, err)
	assert.Equal(t, "vs_submitted", res.Name)
	assert.Equal(t, "build/vs_submitted.pdf", res.PDF)
}

func TestFlattenAt(t *testing.T) {
	f := newFixture(t)
	f.pipeline.openRepo = func(string) (tex.BlobReader, error) {
		return blobMap{"abc": {
			"ms/paper.tex": "P % note\n\\input{paper}\\input{intro}",
			"ms/intro.tex": "I",
		}}, nil
	}

	out, err := f.pipeline.FlattenAt("abc", "/repo/ms/paper.tex")
	require.NoError(t, err)
	assert.Equal(t, "P % note\nI", out, "comments kept, self include dropped")

	_, err = f.pipeline.FlattenAt("nope", "/repo/ms/paper.tex")
	var atCommit *MasterAtCommitError
	require.ErrorAs(t, err, &atCommit)
	assert.Equal(t, "nope", atCommit.Ref)
	assert.Equal(t, "ms/paper.tex", atCommit.Path)
}

func TestRunFailures(t *testing.T) {
	t.Run("master missing at commit", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "nope")

		var atCommit *MasterAtCommitError
		require.ErrorAs(t, err, &atCommit)
		assert.Equal(t, "ms/paper.tex", atCommit.Path)
		assert.ErrorIs(t, err, gitutil.ErrNotFound)
		assert.Empty(t, f.exec.Calls)
		assert.Contains(t, f.fs.Removed, CurrentFile)
	})

	t.Run("master missing on disk", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.pipeline.Run(context.Background(), "", "/repo/ms/other.tex", "abc")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, "inline current", stageErr.Stage)
	})

	t.Run("not a repository", func(t *testing.T) {
		f := newFixture(t)
		f.pipeline.findRoot = func(p string) (string, error) {
			return "", &gitutil.OpenError{Path: p, Cause: errors.New("repository does not exist")}
		}
		_, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "abc")

		var openErr *gitutil.OpenError
		assert.ErrorAs(t, err, &openErr)
	})

	t.Run("latexdiff exits non-zero", func(t *testing.T) {
		f := newFixture(t)
		f.exec.RunToWriterFunc = func(context.Context, []string, string, io.Writer) (*executor.Result, error) {
			return &executor.Result{ExitCode: 2, Stderr: "Unknown option\n"}, nil
		}
		_, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "abc")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, "latexdiff", stageErr.Stage)
		var exitErr *executor.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.ExitCode)
	})

	t.Run("latexmk produces nothing", func(t *testing.T) {
		f := newFixture(t)
		f.exec.RunFunc = func(context.Context, []string, string) (*executor.Result, error) {
			return &executor.Result{ExitCode: 12}, nil
		}
		_, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "abc")

		assert.ErrorIs(t, err, ErrNoPDF)
		assert.Contains(t, f.fs.Removed, "current_abc.tex")
	})

	t.Run("latexmk errors but still writes a pdf", func(t *testing.T) {
		f := newFixture(t)
		f.exec.RunFunc = func(_ context.Context, command []string, _ string) (*executor.Result, error) {
			if !slices.Contains(command, "-c") {
				f.fs.CreateFile("current_abc.pdf", "%PDF")
				return &executor.Result{ExitCode: 12}, nil
			}
			return &executor.Result{}, nil
		}
		res, err := f.pipeline.Run(context.Background(), "", "/repo/ms/paper.tex", "abc")
		require.NoError(t, err)
		assert.Equal(t, "build/current_abc.pdf", res.PDF)
	})
}

func TestDefaultName(t *testing.T) {
	assert.Equal(t, "current_HEAD~3", DefaultName("HEAD~3"))
}
