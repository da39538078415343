package punch

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_PreservesContentAndMetadata(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src.bin", []byte{0, 1, 2, 255}, 0o640))
	modTime := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fsys.Chtimes("/src.bin", modTime, modTime))

	require.NoError(t, copyFile(fsys, "/src.bin", "/dst.bin"))

	content, err := afero.ReadFile(fsys, "/dst.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 255}, content)

	info, err := fsys.Stat("/dst.bin")
	require.NoError(t, err)
	assert.Equal(t, modTime, info.ModTime())
}

func TestCopyFile_MissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := copyFile(fsys, "/gone.bin", "/dst.bin")
	require.Error(t, err)
}

func TestCopyTextFile_NormalizesNewlines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src.txt", []byte("one\r\ntwo\nthree"), 0o644))

	options, err := NewTextOptions("**/*.txt", NewlineUnix, PreserveTabs, false)
	require.NoError(t, err)
	require.NoError(t, copyTextFile(fsys, "/src.txt", "/dst.txt", options))

	content, err := afero.ReadFile(fsys, "/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(content))
}

func TestCopyTextFile_EmptySource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src.txt", nil, 0o644))

	options, err := NewTextOptions("**/*.txt", NewlineDos, PreserveTabs, false)
	require.NoError(t, err)
	require.NoError(t, copyTextFile(fsys, "/src.txt", "/dst.txt", options))

	content, err := afero.ReadFile(fsys, "/dst.txt")
	require.NoError(t, err)
	assert.Empty(t, content)
}
