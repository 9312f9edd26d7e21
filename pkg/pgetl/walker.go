package pgetl

// FileWalker discovers input files under a root directory.
type FileWalker interface {
	// Walk returns absolute paths of matching regular files, sorted lexicographically.
	// A missing or non-directory root returns an error wrapping ErrSourceNotFound.
	Walk(root string) ([]string, error)

	// ReadFile returns the contents of a discovered file.
	ReadFile(path string) ([]byte, error)
}
