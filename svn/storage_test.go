package svn

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage_Protocols(t *testing.T) {
	runner := &fakeRunner{}
	for _, depotURL := range []string{
		"file:///repos/project",
		"http://example.com/repos/project",
		"https://example.com/repos/project",
		"svn://example.com/project",
		"svn+ssh://example.com/project",
	} {
		storage, err := NewStorage(runner, depotURL)
		require.NoError(t, err, depotURL)
		assert.Equal(t, depotURL, storage.DepotURL())
	}

	_, err := NewStorage(runner, "ftp://example.com/repos/project")
	require.Error(t, err)
}

func TestStorage_CreateRepository(t *testing.T) {
	runner := &fakeRunner{}
	storage, err := NewStorage(runner, "file:///repos/project")
	require.NoError(t, err)

	require.NoError(t, storage.CreateRepository(afero.NewMemMapFs(), false))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "svnadmin create /repos/project", runner.calls[0])
}

func TestStorage_CreateRepositoryRequiresFileProtocol(t *testing.T) {
	storage, err := NewStorage(&fakeRunner{}, "http://example.com/repos/project")
	require.NoError(t, err)

	err = storage.CreateRepository(afero.NewMemMapFs(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file protocol")
}

func TestStorage_Mkdir(t *testing.T) {
	runner := &fakeRunner{}
	storage, err := NewStorage(runner, "file:///repos/project")
	require.NoError(t, err)

	require.NoError(t, storage.Mkdir("trunk/source", "Added folder for source code."))
	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		"svn mkdir --non-interactive --parents --message Added folder for source code. file:///repos/project/trunk/source",
		runner.calls[0])
}
