package wal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaturanga836/docstore/internal/storage/block"
)

func TestWAL_AppendAndReplay(t *testing.T) {
	storage := block.NewMemFS()
	w, err := Open(storage, "wal.log")
	require.NoError(t, err)

	require.NoError(t, w.Append(Record{Op: OpPut, Key: []byte("users/a"), Value: []byte(`{"path":"users/a"}`)}))
	require.NoError(t, w.Append(Record{Op: OpDelete, Key: []byte("users/b")}))
	require.NoError(t, w.Close())

	reopened, err := Open(storage, "wal.log")
	require.NoError(t, err)
	defer reopened.Close()

	var records []Record
	err = reopened.Replay(func(r Record) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, OpPut, records[0].Op)
	assert.Equal(t, "users/a", string(records[0].Key))
	assert.Equal(t, OpDelete, records[1].Op)
	assert.Equal(t, "users/b", string(records[1].Key))
}

func TestWAL_TruncatedTailTolerated(t *testing.T) {
	storage := block.NewMemFS()
	w, err := Open(storage, "wal.log")
	require.NoError(t, err)

	require.NoError(t, w.Append(Record{Op: OpPut, Key: []byte("k1"), Value: []byte("v1")}))
	require.NoError(t, w.Append(Record{Op: OpPut, Key: []byte("k2"), Value: []byte("v2")}))
	require.NoError(t, w.Append(Record{Op: OpPut, Key: []byte("k3"), Value: []byte("v3")}))

	garbage := make([]byte, 50)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	_, err = w.file.Write(garbage)
	require.NoError(t, err)
	require.NoError(t, w.file.Sync())
	require.NoError(t, w.Close())

	reopened, err := Open(storage, "wal.log")
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	err = reopened.Replay(func(r Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWAL_Rotate(t *testing.T) {
	storage := block.NewMemFS()
	w, err := Open(storage, "wal.log")
	require.NoError(t, err)

	require.NoError(t, w.Append(Record{Op: OpPut, Key: []byte("k"), Value: []byte("v")}))
	require.NoError(t, w.Rotate())

	var count int
	err = w.Replay(func(r Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
