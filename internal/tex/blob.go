package tex

import (
	"errors"
	"log/slog"
	"path"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/gitutil"
)

// BlobInliner flattens includes using file contents from a git commit.
// Paths are repository-relative and slash separated.
type BlobInliner struct {
	blobs    BlobReader
	log      *slog.Logger
	maxDepth int
}

// NewBlobInliner creates a BlobInliner over a repository's blob reader.
func NewBlobInliner(blobs BlobReader, cfg *config.Config, log *slog.Logger) *BlobInliner {
	if blobs == nil {
		panic("blobs is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &BlobInliner{blobs: blobs, log: log, maxDepth: cfg.Tex.MaxIncludeDepth}
}

// Inline returns text with every recognised include replaced by the
// recursively inlined blob at commitRef, or by "" when the blob cannot be read.
func (b *BlobInliner) Inline(commitRef, text, baseDir string) string {
	return b.inline(commitRef, text, baseDir, includeChain{maxDepth: b.maxDepth})
}

// InlineAs inlines text as the blob at the repository-relative path p.
func (b *BlobInliner) InlineAs(commitRef, text, p string) string {
	p = path.Clean(p)
	return b.inline(commitRef, text, path.Dir(p), masterChain(p, b.maxDepth))
}

func (b *BlobInliner) inline(ref, text, baseDir string, chain includeChain) string {
	return Parse(text, IncludeMacros).Render(func(n Node) (string, bool) {
		if len(n.Args) == 0 {
			b.log.Debug("skipping include without argument", "macro", n.Text)
			return "", false
		}

		name := includeName(n.Arg(0))
		if name == "" {
			b.log.Debug("skipping include with empty path", "macro", n.Text)
			return "", true
		}
		p := path.Join(baseDir, name)

		next, reason := chain.enter(p)
		if reason != "" {
			b.log.Warn("include dropped", "ref", ref, "path", p, "reason", reason)
			return "", true
		}

		content, err := b.blobs.ReadBlob(ref, p)
		if err != nil {
			b.log.Warn("include unavailable at commit", "ref", ref, "path", p, "reason", blobFailure(err), "error", err)
			return "", true
		}
		b.log.Debug("inlining", "ref", ref, "path", p)
		return b.inline(ref, content, path.Dir(p), next), true
	})
}

func blobFailure(err error) string {
	switch {
	case errors.Is(err, gitutil.ErrNotFound):
		return "not found"
	case errors.Is(err, gitutil.ErrNotUTF8):
		return "not utf-8"
	default:
		return "read failed"
	}
}

// InlineHistorical opens the repository at repoRoot and inlines text as of
// commitRef. Only a repository that cannot be opened is an error.
func InlineHistorical(commitRef, text, baseDir, repoRoot string, cfg *config.Config, log *slog.Logger) (string, error) {
	repo, err := gitutil.Open(repoRoot)
	if err != nil {
		return "", err
	}
	return NewBlobInliner(repo, cfg, log).Inline(commitRef, text, baseDir), nil
}
