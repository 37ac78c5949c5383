// Package latexdiff typesets a marked-up comparison between the working tree
// manuscript and the same manuscript at an earlier git commit.
package latexdiff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/gitutil"
	"github.com/Cyclone1070/preprint/internal/tex"
)

const (
	// CurrentFile holds the flattened working-tree manuscript.
	CurrentFile = "_current.tex"
	// PreviousFile holds the flattened manuscript at the compared commit.
	PreviousFile = "_prev.tex"
)

// intermediateSuffixes are removed after the diff PDF has been built.
var intermediateSuffixes = []string{"Notes.bib", ".bbl", ".tex"}

// Result describes the artefacts of a diff run.
type Result struct {
	Name string // output base name
	PDF  string // path of the PDF in the build directory
}

// Pipeline flattens both versions of a manuscript, diffs them with latexdiff
// and compiles the result with latexmk. All files are written in workDir.
type Pipeline struct {
	fs      fileSystem
	exec    commandExecutor
	cfg     *config.Config
	log     *slog.Logger
	workDir string

	findRoot func(path string) (string, error)
	openRepo func(root string) (tex.BlobReader, error)
}

// NewPipeline creates a Pipeline working in the current directory.
func NewPipeline(fs fileSystem, exec commandExecutor, cfg *config.Config, log *slog.Logger) *Pipeline {
	if fs == nil {
		panic("fs is required")
	}
	if exec == nil {
		panic("exec is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		fs:       fs,
		exec:     exec,
		cfg:      cfg,
		log:      log,
		workDir:  ".",
		findRoot: gitutil.FindRoot,
		openRepo: func(root string) (tex.BlobReader, error) {
			repo, err := gitutil.Open(root)
			if err != nil {
				return nil, err
			}
			return repo, nil
		},
	}
}

// DefaultName is the output name used when none is given.
func DefaultName(prevCommit string) string {
	return "current_" + prevCommit
}

// Run produces <build_dir>/<outputName>.pdf showing the changes to
// masterPath since prevCommit.
func (p *Pipeline) Run(ctx context.Context, outputName, masterPath, prevCommit string) (*Result, error) {
	if outputName == "" {
		outputName = DefaultName(prevCommit)
	}
	name := strings.TrimSuffix(outputName, filepath.Ext(outputName))
	p.log.Debug("diff pipeline", "name", name, "master", masterPath, "prev", prevCommit)

	current, err := p.InlineCurrent(masterPath)
	if err != nil {
		return nil, err
	}
	defer p.remove(current)

	prev, err := p.InlinePrevious(prevCommit, masterPath)
	if err != nil {
		return nil, err
	}
	defer p.remove(prev)

	diffTex := name + ".tex"
	if err := p.latexdiff(ctx, filepath.Base(prev), filepath.Base(current), diffTex); err != nil {
		return nil, err
	}

	pdf, err := p.compile(ctx, name)
	p.cleanup(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Result{Name: name, PDF: pdf}, nil
}

// InlineCurrent flattens the working-tree manuscript into CurrentFile.
func (p *Pipeline) InlineCurrent(masterPath string) (string, error) {
	data, err := p.fs.ReadFile(masterPath)
	if err != nil {
		return "", &StageError{Stage: "inline current", Cause: err}
	}

	text := tex.StripComments(string(data))
	text = tex.NewInliner(p.fs, p.cfg, p.log).InlineAs(text, masterPath)

	out := filepath.Join(p.workDir, CurrentFile)
	if err := p.fs.WriteFileAtomic(out, []byte(text), 0644); err != nil {
		return "", &StageError{Stage: "inline current", Cause: err}
	}
	return out, nil
}

// InlinePrevious flattens the manuscript as of ref into PreviousFile.
// The root document itself must exist at ref.
func (p *Pipeline) InlinePrevious(ref, masterPath string) (string, error) {
	text, err := p.flattenAt(ref, masterPath, tex.StripComments)
	if err != nil {
		return "", &StageError{Stage: "inline previous", Cause: err}
	}

	out := filepath.Join(p.workDir, PreviousFile)
	if err := p.fs.WriteFileAtomic(out, []byte(text), 0644); err != nil {
		return "", &StageError{Stage: "inline previous", Cause: err}
	}
	return out, nil
}

// FlattenAt returns the manuscript at masterPath as it was at ref, with every
// include read from the same commit. A master absent from ref is a
// *MasterAtCommitError.
func (p *Pipeline) FlattenAt(ref, masterPath string) (string, error) {
	return p.flattenAt(ref, masterPath, nil)
}

// flattenAt applies prepare to the master's text before its includes are expanded.
func (p *Pipeline) flattenAt(ref, masterPath string, prepare func(string) string) (string, error) {
	root, err := p.findRoot(masterPath)
	if err != nil {
		return "", err
	}
	rel, err := gitutil.RelPath(root, masterPath)
	if err != nil {
		return "", err
	}
	repo, err := p.openRepo(root)
	if err != nil {
		return "", err
	}

	text, err := repo.ReadBlob(ref, rel)
	if err != nil {
		return "", &MasterAtCommitError{Ref: ref, Path: rel, Cause: err}
	}
	if prepare != nil {
		text = prepare(text)
	}
	return tex.NewBlobInliner(repo, p.cfg, p.log).InlineAs(ref, text, rel), nil
}

func (p *Pipeline) latexdiff(ctx context.Context, prev, current, diffTex string) error {
	cmd := []string{"latexdiff", "--type=" + p.cfg.Diff.LatexdiffType, prev, current}

	var buf bytes.Buffer
	res, err := p.exec.RunToWriter(ctx, cmd, p.workDir, &buf)
	if err := executor.Check(cmd, res, err); err != nil {
		return &StageError{Stage: "latexdiff", Cause: err}
	}

	if err := p.fs.WriteFileAtomic(filepath.Join(p.workDir, diffTex), buf.Bytes(), 0644); err != nil {
		return &StageError{Stage: "latexdiff", Cause: err}
	}
	return nil
}

// compile runs latexmk and moves the PDF into the build directory.
// latexmk runs with -f, so a non-zero exit is only fatal when no PDF appears.
func (p *Pipeline) compile(ctx context.Context, name string) (string, error) {
	cmd := []string{"latexmk", "-f", "-pdf", "-bibtex-cond", name + ".tex"}
	res, err := p.exec.Run(ctx, cmd, p.workDir, nil)
	if err := executor.Check(cmd, res, err); err != nil {
		var exitErr *executor.ExitError
		if !errors.As(err, &exitErr) {
			return "", &StageError{Stage: "latexmk", Cause: err}
		}
		p.log.Warn("latexmk reported errors", "name", name, "error", err)
	}

	pdf := filepath.Join(p.workDir, name+".pdf")
	if !p.fs.Exists(pdf) {
		return "", &StageError{Stage: "latexmk", Cause: fmt.Errorf("%w: %s", ErrNoPDF, pdf)}
	}

	buildDir := filepath.Join(p.workDir, p.cfg.Diff.BuildDir)
	if err := p.fs.EnsureDirs(buildDir); err != nil {
		return "", &StageError{Stage: "install pdf", Cause: err}
	}
	dest := filepath.Join(buildDir, name+".pdf")
	if err := p.fs.Move(pdf, dest); err != nil {
		return "", &StageError{Stage: "install pdf", Cause: err}
	}
	p.log.Info("diff built", "pdf", dest)
	return dest, nil
}

func (p *Pipeline) cleanup(ctx context.Context, name string) {
	cmd := []string{"latexmk", "-f", "-pdf", "-bibtex-cond", "-c", name + ".tex"}
	res, err := p.exec.Run(ctx, cmd, p.workDir, nil)
	if err := executor.Check(cmd, res, err); err != nil {
		p.log.Warn("latexmk cleanup failed", "error", err)
	}
	for _, suffix := range intermediateSuffixes {
		p.remove(filepath.Join(p.workDir, name+suffix))
	}
}

func (p *Pipeline) remove(path string) {
	if err := p.fs.Remove(path); err != nil {
		p.log.Warn("cannot remove intermediate file", "path", path, "error", err)
	}
}
