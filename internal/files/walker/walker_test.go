package walker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgetl/internal/files/filesystem"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

func TestWalker_SortedAndFiltered(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/data")
	mfs.AddFile("song_data/b.json", "{}")
	mfs.AddFile("song_data/A/x.JSON", "{}")
	mfs.AddFile("song_data/a.json", "{}")
	mfs.AddFile("song_data/notes.txt", "ignore me")
	mfs.AddFile("song_data/.ipynb_checkpoints/a-checkpoint.json", "{}")

	paths, err := NewWithFS("", mfs).Walk("/data/song_data")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/data/song_data/A/x.JSON",
		"/data/song_data/a.json",
		"/data/song_data/b.json",
	}, paths)
}

func TestWalker_OrderIndependentOfInsertion(t *testing.T) {
	first := filesystem.NewMemoryFileSystem("/r")
	second := filesystem.NewMemoryFileSystem("/r")
	names := []string{"c/3.json", "a/1.json", "b/2.json"}
	for i := range names {
		first.AddFile(names[i], "{}")
		second.AddFile(names[len(names)-1-i], "{}")
	}

	a, err := NewWithFS(".json", first).Walk("/r")
	require.NoError(t, err)
	b, err := NewWithFS(".json", second).Walk("/r")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWalker_CustomExtension(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/r")
	mfs.AddFile("a.json", "{}")
	mfs.AddFile("b.ndjson", "{}")

	w := NewWithFS(".NDJSON", mfs)
	assert.Equal(t, ".ndjson", w.Extension())

	paths, err := w.Walk("/r")
	require.NoError(t, err)
	assert.Equal(t, []string{"/r/b.ndjson"}, paths)
}

func TestWalker_EmptyDirectory(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/r")
	mfs.AddDir("empty")

	paths, err := NewWithFS("", mfs).Walk("/r/empty")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestWalker_MissingOrFileRoot(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/r")
	mfs.AddFile("file.json", "{}")
	w := NewWithFS("", mfs)

	_, err := w.Walk("/r/missing")
	assert.True(t, errors.Is(err, pgetl.ErrSourceNotFound))

	_, err = w.Walk("/r/file.json")
	assert.True(t, errors.Is(err, pgetl.ErrSourceNotFound))
}

func TestWalker_OSFileSystemReturnsAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A", "B"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A", "B", "TRAAA.json"), []byte("{}"), 0644))

	w := New("")
	paths, err := w.Walk(root)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, filepath.IsAbs(paths[0]))

	content, err := w.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))
}

func TestNewWithFS_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewWithFS("", nil) })
}
