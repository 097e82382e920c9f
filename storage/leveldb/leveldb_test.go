package leveldb

import (
	"os"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/storage"
)

func newStorage(t *testing.T) (storage.Storage, func()) {
	t.Helper()

	path, err := os.MkdirTemp("/tmp", "mempool_leveldb")
	require.NoError(t, err)

	s, err := NewLevelDBStorage(path, hclog.NewNullLogger())
	require.NoError(t, err)

	closeFn := func() {
		require.NoError(t, s.Close())
		require.NoError(t, os.RemoveAll(path))
	}

	return s, closeFn
}

func TestStorage(t *testing.T) {
	storage.TestStorage(t, newStorage)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	_, err := Factory(map[string]interface{}{}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "path not found")

	_, err = Factory(map[string]interface{}{"path": 1}, hclog.NewNullLogger())
	require.ErrorContains(t, err, "path is not a string")

	s, err := Factory(map[string]interface{}{"path": t.TempDir()}, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
