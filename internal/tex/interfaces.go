package tex

import "io/fs"

// fileReader is what the filesystem inliner needs.
type fileReader interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
}

// rootFS is what the root-document finder needs.
type rootFS interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	ReadHead(path string, n int64) ([]byte, error)
}

// BlobReader reads the text of a repository-relative path at a commit.
type BlobReader interface {
	ReadBlob(ref, path string) (string, error)
}
