// Package pack prepares a self-contained copy of a manuscript for journal or
// arXiv submission: one flattened .tex file with renamed figures and an
// inlined bibliography.
package pack

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/executor"
	"github.com/Cyclone1070/preprint/internal/tex"
)

const bytesPerMB = 1e6

// Packager builds submission packages under the build directory.
type Packager struct {
	fs       fileSystem
	exec     commandExecutor
	cfg      *config.Config
	log      *slog.Logger
	buildDir string
}

// NewPackager creates a Packager writing below cfg.Diff.BuildDir.
func NewPackager(fs fileSystem, exec commandExecutor, cfg *config.Config, log *slog.Logger) *Packager {
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
	return &Packager{fs: fs, exec: exec, cfg: cfg, log: log, buildDir: cfg.Diff.BuildDir}
}

// Run writes the package and reports what went into it.
func (p *Packager) Run(ctx context.Context, opts Options) (*Report, error) {
	name := opts.Name
	if name == "" {
		name = tex.StripExt(filepath.Base(opts.Master))
	}
	dir := filepath.Join(p.buildDir, name)
	report := &Report{Name: name, Style: opts.Style, Dir: dir}

	data, err := p.fs.ReadFile(opts.Master)
	if err != nil {
		return nil, &MasterReadError{Path: opts.Master, Cause: err}
	}
	if err := p.fs.EnsureDirs(dir); err != nil {
		return nil, &InstallError{Path: dir, Cause: err}
	}

	masterDir := filepath.Dir(opts.Master)
	text := tex.NewInliner(p.fs, p.cfg, p.log).InlineAs(string(data), opts.Master)
	text = tex.StripComments(text)

	renamed := make(map[string]string)
	for _, ref := range tex.FindFigures(text) {
		fig := p.installFigure(ctx, ref, masterDir, dir, opts)
		report.Figures = append(report.Figures, fig)
		if fig.Source != "" {
			renamed[ref.Path] = tex.StripExt(filepath.Base(fig.Installed))
		}
	}
	text = tex.RewriteFigures(text, renamed)

	bbl := tex.StripExt(opts.Master) + ".bbl"
	if p.fs.Exists(bbl) {
		bblText, err := p.fs.ReadFile(bbl)
		if err != nil {
			p.log.Warn("cannot read bibliography", "path", bbl, "error", err)
		} else if out, ok := tex.InlineBibliography(text, string(bblText)); ok {
			text = out
			report.Bibliography = bbl
		} else {
			p.log.Warn("no place to inline bibliography", "path", bbl)
		}
	} else {
		p.log.Debug("no bibliography to inline", "path", bbl)
	}

	report.Output = filepath.Join(dir, outputName(opts))
	if err := p.fs.WriteFileAtomic(report.Output, []byte(text), 0644); err != nil {
		return nil, &InstallError{Path: report.Output, Cause: err}
	}
	p.log.Info("package written", "path", report.Output, "figures", len(report.Figures))
	return report, nil
}

func outputName(opts Options) string {
	if opts.Style == StyleAASTeX {
		return "ms.tex"
	}
	return filepath.Base(opts.Master)
}

// installFigure copies the highest-priority variant of ref into dir.
// Failures are logged and leave Source empty so the reference is kept as is.
func (p *Packager) installFigure(ctx context.Context, ref tex.FigureRef, masterDir, dir string, opts Options) Figure {
	fig := Figure{Num: ref.Num, Ref: ref.Path}

	src, ext, ok := p.findVariant(filepath.Join(masterDir, filepath.FromSlash(ref.Path)), opts.Exts)
	if !ok {
		p.log.Warn("figure not found", "ref", ref.Path, "exts", opts.Exts)
		return fig
	}
	info, err := p.fs.Stat(src)
	if err != nil {
		p.log.Warn("cannot stat figure", "path", src, "error", err)
		return fig
	}

	dst := filepath.Join(dir, installName(opts.Style, ref.Num, src, ext))
	if err := p.fs.CopyFile(src, dst); err != nil {
		p.log.Error("cannot copy figure", "src", src, "dst", dst, "error", err)
		return fig
	}
	fig.Source, fig.Installed, fig.Size = src, dst, info.Size()
	p.log.Debug("figure installed", "src", src, "dst", dst, "size", info.Size())

	if opts.Style == StyleArxiv && opts.JPEG && !isJPEG(ext) && float64(info.Size()) > opts.MaxSizeMB*bytesPerMB {
		if jpg, err := p.rasterize(ctx, dst); err != nil {
			p.log.Error("cannot rasterise figure", "path", dst, "error", err)
		} else {
			fig.Installed, fig.Rasterized = jpg, true
		}
	}
	return fig
}

// findVariant returns the first existing <stem>.<ext> in priority order,
// falling back to the path exactly as written.
func (p *Packager) findVariant(path string, exts []string) (string, string, bool) {
	stem := tex.StripExt(path)
	for _, ext := range exts {
		candidate := stem + "." + ext
		if p.fs.Exists(candidate) {
			return candidate, ext, true
		}
	}
	if filepath.Ext(path) != "" && p.fs.Exists(path) {
		return path, filepath.Ext(path)[1:], true
	}
	return "", "", false
}

func isJPEG(ext string) bool {
	return strings.EqualFold(ext, "jpg") || strings.EqualFold(ext, "jpeg")
}

func installName(style string, num int, src, ext string) string {
	switch style {
	case StyleAASTeX:
		return fmt.Sprintf("f%d.%s", num, ext)
	case StyleArxiv:
		return fmt.Sprintf("figure%d.%s", num, ext)
	default:
		return filepath.Base(src)
	}
}

// rasterize converts path to a JPEG beside it and removes the original.
func (p *Packager) rasterize(ctx context.Context, path string) (string, error) {
	jpg := tex.StripExt(path) + ".jpg"
	cmd := []string{"convert", "-density", "300", "-trim", "-quality", "80", path, jpg}
	res, err := p.exec.Run(ctx, cmd, "", nil)
	if err := executor.Check(cmd, res, err); err != nil {
		return "", err
	}
	if err := p.fs.Remove(path); err != nil {
		p.log.Warn("cannot remove rasterised original", "path", path, "error", err)
	}
	return jpg, nil
}
