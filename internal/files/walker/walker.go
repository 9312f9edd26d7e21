// Package walker discovers input files under a source directory.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/pgetl/internal/files/filesystem"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.FileWalker = (*Walker)(nil)

// skippedDirs are directory names never descended into. Notebook tooling
// leaves checkpoint copies of the input files in them.
var skippedDirs = map[string]bool{
	".ipynb_checkpoints": true,
}

// Walker finds regular files whose extension matches case-insensitively.
// Safe for concurrent use if the filesystem provider is.
type Walker struct {
	extension  string
	fsProvider filesystem.FileSystemProvider
}

// New creates a Walker over the OS filesystem. An empty extension means pgetl.DefaultExtension.
func New(extension string) *Walker {
	return NewWithFS(extension, filesystem.NewOSFileSystem())
}

// NewWithFS creates a Walker over a custom filesystem provider.
// Panics if fsProvider is nil.
func NewWithFS(extension string, fsProvider filesystem.FileSystemProvider) *Walker {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if extension == "" {
		extension = pgetl.DefaultExtension
	}
	return &Walker{
		extension:  strings.ToLower(extension),
		fsProvider: fsProvider,
	}
}

// Extension returns the lower-cased suffix filter.
func (w *Walker) Extension() string {
	return w.extension
}

// Walk returns absolute paths of matching files under root, sorted
// lexicographically. An empty result is not an error.
func (w *Walker) Walk(root string) ([]string, error) {
	dir, err := w.fsProvider.Open(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, filesystem.ErrNotDirectory) {
			return nil, fmt.Errorf("%w: %s: %v", pgetl.ErrSourceNotFound, root, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", root, err)
	}

	var paths []string
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w", root, err)
		}

		info := file.Info()
		if info.IsDir() {
			if skippedDirs[info.Name()] {
				return filesystem.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if strings.ToLower(filepath.Ext(file.Path())) != w.extension {
			return nil
		}

		paths = append(paths, file.Path())
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func (w *Walker) ReadFile(path string) ([]byte, error) {
	return w.fsProvider.ReadFile(path)
}
