package compaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaturanga836/docstore/internal/memtable"
	"github.com/chaturanga836/docstore/internal/sst"
	"github.com/chaturanga836/docstore/internal/storage/block"
)

func writeSST(t *testing.T, storage block.Storage, name string, puts map[string]string, deletes []string) {
	t.Helper()
	mt := memtable.New()
	for k, v := range puts {
		mt.Put(k, []byte(v))
	}
	for _, k := range deletes {
		mt.Delete(k)
	}
	_, err := sst.Write(storage, name, mt)
	require.NoError(t, err)
}

func TestCompact_LastWriteWinsAndDropsTombstones(t *testing.T) {
	storage := block.NewMemFS()
	writeSST(t, storage, "1.sst", map[string]string{"a": "old-a", "b": "old-b"}, nil)
	writeSST(t, storage, "2.sst", map[string]string{"a": "new-a"}, []string{"b"})

	stats, err := Compact(storage, "")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesBefore)
	assert.Equal(t, 1, stats.FilesAfter)
	assert.Equal(t, 3, stats.EntriesBefore)
	assert.Equal(t, 1, stats.EntriesAfter)
	assert.Equal(t, 1, stats.TombstonesRemoved)

	infos, err := storage.ListDir("")
	require.NoError(t, err)
	require.Len(t, infos, 1)

	r := sst.Open(storage, infos[0].Path)
	lookup, value, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, sst.Found, lookup)
	assert.Equal(t, "new-a", string(value))

	lookup, _, err = r.Get("b")
	require.NoError(t, err)
	assert.Equal(t, sst.NotFound, lookup)
}

func TestCompact_NoFiles(t *testing.T) {
	storage := block.NewMemFS()
	stats, err := Compact(storage, "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FilesBefore)
	assert.Equal(t, 0, stats.FilesAfter)
}

func TestCompact_IdempotentOnSingleFile(t *testing.T) {
	storage := block.NewMemFS()
	writeSST(t, storage, "1.sst", map[string]string{"a": "1", "b": "2"}, nil)

	first, err := Compact(storage, "")
	require.NoError(t, err)
	assert.Equal(t, 2, first.EntriesAfter)

	second, err := Compact(storage, "")
	require.NoError(t, err)
	assert.Equal(t, 1, second.FilesBefore)
	assert.Equal(t, 2, second.EntriesAfter)
	assert.Equal(t, first.SizeAfter, second.SizeBefore)
}
