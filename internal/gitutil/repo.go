// Package gitutil is the read-only version-control layer: it resolves commit
// references, reads blobs from historical trees and locates repository roots.
package gitutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// minPrefixLen is the shortest hex prefix accepted as an abbreviated hash.
const minPrefixLen = 4

// Repository is a read-only handle on a git repository.
// Resolved commits are memoised, so repeated reads against one ref walk the
// object database once.
type Repository struct {
	repo    *git.Repository
	root    string
	commits map[string]*object.Commit
}

// Open opens the repository whose worktree root is repoRoot.
func Open(repoRoot string) (*Repository, error) {
	r, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, &OpenError{Path: repoRoot, Cause: err}
	}
	return &Repository{
		repo:    r,
		root:    repoRoot,
		commits: make(map[string]*object.Commit),
	}, nil
}

// Root returns the path the repository was opened at.
func (r *Repository) Root() string {
	return r.root
}

// FindRoot returns the absolute worktree root of the repository containing p,
// searching parent directories. p may name a file or a directory.
func FindRoot(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", &OpenError{Path: p, Cause: err}
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", &OpenError{Path: p, Cause: err}
	}
	wt, err := r.Worktree()
	if err != nil {
		return "", &OpenError{Path: p, Cause: err}
	}
	return wt.Filesystem.Root(), nil
}

// RelPath returns p relative to root in slash form, as used for tree lookups.
func RelPath(root, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &OutsideRepoError{Path: p, Root: root}
	}
	return rel, nil
}

// ResolveCommit resolves ref (full or abbreviated hash, branch, tag, HEAD~n, ...)
// to a commit.
func (r *Repository) ResolveCommit(ref string) (*object.Commit, error) {
	if c, ok := r.commits[ref]; ok {
		return c, nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		prefixHash, prefixErr := r.matchPrefix(ref)
		if prefixErr != nil {
			if errors.Is(prefixErr, ErrAmbiguousRef) {
				err = prefixErr
			}
			return nil, &RefError{Ref: ref, Cause: err}
		}
		hash = &prefixHash
	}

	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, &RefError{Ref: ref, Cause: err}
	}
	r.commits[ref] = c
	return c, nil
}

// matchPrefix scans all commit objects for a unique hash starting with prefix.
func (r *Repository) matchPrefix(prefix string) (plumbing.Hash, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < minPrefixLen || !isHex(prefix) {
		return plumbing.ZeroHash, plumbing.ErrReferenceNotFound
	}

	iter, err := r.repo.CommitObjects()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer iter.Close()

	var matches []plumbing.Hash
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.HasPrefix(c.Hash.String(), prefix) {
			matches = append(matches, c.Hash)
		}
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, err
	}

	switch len(matches) {
	case 0:
		return plumbing.ZeroHash, plumbing.ErrReferenceNotFound
	case 1:
		return matches[0], nil
	default:
		return plumbing.ZeroHash, fmt.Errorf("%w: %s matches %d commits", ErrAmbiguousRef, prefix, len(matches))
	}
}

// ReadBlob returns the UTF-8 text of p as it existed at ref.
// p is slash separated and relative to the repository root.
func (r *Repository) ReadBlob(ref, p string) (string, error) {
	c, err := r.ResolveCommit(ref)
	if err != nil {
		return "", err
	}

	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", &NotFoundError{Ref: ref, Path: p, Cause: object.ErrFileNotFound}
	}

	f, err := c.File(clean)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
			return "", &NotFoundError{Ref: ref, Path: p, Cause: err}
		}
		return "", err
	}

	rd, err := f.Reader()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(rd)
	_ = rd.Close()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		return "", &DecodeError{Ref: ref, Path: p}
	}
	return string(data), nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
