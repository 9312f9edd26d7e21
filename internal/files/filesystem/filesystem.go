package filesystem

import (
	"errors"
	"io/fs"
)

// FileInfo aliases fs.FileInfo so both implementations share one metadata type.
type FileInfo = fs.FileInfo

// SkipDir, returned by a Walk callback for a directory, skips that directory's contents.
var SkipDir = fs.SkipDir

// ErrNotDirectory is returned by Open when the path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// File is one entry visited by Walk.
type File interface {
	// Path returns the absolute path
	Path() string

	// RelativePath returns the path relative to the walked root, with forward slashes
	RelativePath() string

	Info() FileInfo
	ReadContent() ([]byte, error)
}

// Directory is a traversable tree rooted at Path.
type Directory interface {
	Path() string

	// Walk visits the root and every entry below it in lexical order. Returning
	// SkipDir for a directory skips it; any other error stops the walk.
	// A panic in fn is converted to an error.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider opens directories and reads files.
type FileSystemProvider interface {
	// Open fails with an fs.ErrNotExist-wrapping error for a missing path and
	// with ErrNotDirectory for a regular file.
	Open(path string) (Directory, error)

	ReadFile(path string) ([]byte, error)
	Stat(path string) (FileInfo, error)
}
