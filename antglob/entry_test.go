package antglob

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry_FileAndFolder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/base/sub", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/base/sub/hugo.txt", []byte("hello"), 0o644))

	file, err := NewEntry(fsys, "/base", []string{"sub", "hugo.txt"})
	require.NoError(t, err)
	assert.Equal(t, File, file.Kind)
	assert.Equal(t, int64(5), file.Size)
	assert.Equal(t, "hugo.txt", file.Name())
	assert.Equal(t, "sub/hugo.txt", file.RelPath())

	folder, err := NewEntry(fsys, "/base", []string{"sub"})
	require.NoError(t, err)
	assert.Equal(t, Folder, folder.Kind)
}

func TestNewEntry_Vanished(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := NewEntry(fsys, "/base", []string{"gone.txt"})

	var vanished *VanishedError
	require.ErrorAs(t, err, &vanished)
	assert.Contains(t, vanished.Path, "gone.txt")
}

func TestCompareEntries_FoldersBeforeFiles(t *testing.T) {
	folder := Entry{Kind: Folder, Parts: []string{"zzz"}}
	file := Entry{Kind: File, Parts: []string{"aaa.txt"}}

	assert.Negative(t, CompareEntries(folder, file))
	assert.Positive(t, CompareEntries(file, folder))
	assert.Zero(t, CompareEntries(file, file))
}

func TestSortEntries_CanonicalOrderAndDedup(t *testing.T) {
	entries := []Entry{
		{Kind: File, Parts: []string{"b.txt"}},
		{Kind: Folder, Parts: []string{"sub"}},
		{Kind: File, Parts: []string{"a.txt"}},
		{Kind: File, Parts: []string{"b.txt"}, Size: 99},
		{Kind: File, Parts: []string{"sub", "c.txt"}},
	}

	sorted := SortEntries(entries)
	require.Len(t, sorted, 4)
	assert.Equal(t, "sub", sorted[0].RelPath())
	assert.Equal(t, "a.txt", sorted[1].RelPath())
	assert.Equal(t, "b.txt", sorted[2].RelPath())
	assert.Equal(t, "sub/c.txt", sorted[3].RelPath())

	// The first occurrence of a duplicate path wins.
	assert.Equal(t, int64(0), sorted[2].Size)
}
