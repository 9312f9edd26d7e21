package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var _ FileSystemProvider = (*MemoryFileSystem)(nil)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	absPath string
	content []byte
	info    *memoryFileInfo
}

type memoryFile struct {
	entry   *memoryEntry
	relPath string
}

func (f *memoryFile) Path() string         { return f.entry.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.entry.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return f.entry.content, nil
}

type memoryDirectory struct {
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

// Walk visits entries sorted by path, independent of insertion order.
func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	var paths []string
	for p := range d.fs.entries {
		if p == d.absPath || strings.HasPrefix(p, d.absPath+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if isUnderAny(p, skipped) {
			continue
		}

		entry := d.fs.entries[p]
		relPath := "."
		if p != d.absPath {
			relPath = strings.TrimPrefix(p, d.absPath+"/")
		}

		err := d.visit(fn, &memoryFile{entry: entry, relPath: relPath})
		if err == SkipDir && entry.info.IsDir() {
			skipped = append(skipped, p)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *memoryDirectory) visit(fn func(File, error) error, file *memoryFile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("walk callback panicked at %s: %v", file.Path(), r)
		}
	}()
	return fn(file, nil)
}

func isUnderAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

// MemoryFileSystem is an in-memory FileSystemProvider for tests. Paths use
// forward slashes; relative paths are resolved against the root.
type MemoryFileSystem struct {
	entries map[string]*memoryEntry
	root    string
}

func NewMemoryFileSystem(root string) *MemoryFileSystem {
	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    path.Clean(filepath.ToSlash(root)),
	}
	mfs.addDir(mfs.root)
	return mfs
}

// Root returns the normalized root path.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file and any missing parent directories.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	absPath := mfs.resolve(filePath)
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		content: []byte(content),
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    0644,
			modTime: time.Now(),
		},
	}

	for dir := path.Dir(absPath); dir != "/" && dir != "." && strings.HasPrefix(dir, mfs.root); dir = path.Dir(dir) {
		mfs.addDir(dir)
	}
}

// AddDir adds an empty directory.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.addDir(mfs.resolve(dirPath))
}

func (mfs *MemoryFileSystem) addDir(absPath string) {
	if _, exists := mfs.entries[absPath]; exists {
		return
	}
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
		},
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.resolve(openPath)

	entry, exists := mfs.entries[absPath]
	if !exists {
		return nil, fmt.Errorf("failed to access path %s: %w", openPath, fs.ErrNotExist)
	}
	if !entry.info.IsDir() {
		return nil, fmt.Errorf("%s: %w", openPath, ErrNotDirectory)
	}

	return &memoryDirectory{absPath: absPath, fs: mfs}, nil
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	entry, exists := mfs.entries[mfs.resolve(filePath)]
	if !exists {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, fs.ErrNotExist)
	}
	if entry.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return entry.content, nil
}

func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	entry, exists := mfs.entries[mfs.resolve(statPath)]
	if !exists {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return entry.info, nil
}
