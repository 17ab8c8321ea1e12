package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaturanga836/docstore/internal/memtable"
	"github.com/chaturanga836/docstore/internal/storage/block"
	"github.com/chaturanga836/docstore/internal/wal"
)

func TestBatch_PeekSeesLatestInBatchOp(t *testing.T) {
	b := New()
	b.Set("k", []byte("1"))
	b.Set("k", []byte("2"))

	op, ok := b.Peek("k")
	require.True(t, ok)
	assert.Equal(t, "2", string(op.Value))
}

func TestCommit_AllOpsLandTogether(t *testing.T) {
	storage := block.NewMemFS()
	w, err := wal.Open(storage, "wal.log")
	require.NoError(t, err)
	defer w.Close()
	mt := memtable.New()

	b := New()
	b.Set("a", []byte("1"))
	b.Set("b", []byte("2"))
	b.Delete("c")

	require.NoError(t, Commit(w, mt, b, nil))

	v, ok := mt.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", string(v))
	_, ok = mt.Get("b")
	require.True(t, ok)
	result, _ := mt.Lookup("c")
	assert.Equal(t, memtable.LookupTombstone, result)
}

func TestBatch_UpdateBehavesLikeSet(t *testing.T) {
	storage := block.NewMemFS()
	w, err := wal.Open(storage, "wal.log")
	require.NoError(t, err)
	defer w.Close()
	mt := memtable.New()

	b := New()
	b.Update("a", []byte("1"))

	op, ok := b.Peek("a")
	require.True(t, ok)
	assert.Equal(t, KindUpdate, op.Kind)

	require.NoError(t, Commit(w, mt, b, nil))
	v, ok := mt.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", string(v))
}

func TestCommit_ValidationFailureLeavesNothingObservable(t *testing.T) {
	storage := block.NewMemFS()
	w, err := wal.Open(storage, "wal.log")
	require.NoError(t, err)
	defer w.Close()
	mt := memtable.New()

	b := New()
	b.Set("first", []byte("1"))
	b.Set("second", []byte("bad"))
	b.Delete("third")

	validate := func(op Operation) error {
		if op.Path == "second" {
			return errors.New("validation failed")
		}
		return nil
	}

	err = Commit(w, mt, b, validate)
	require.Error(t, err)

	_, ok := mt.Get("first")
	assert.False(t, ok)
	result, _ := mt.Lookup("third")
	assert.Equal(t, memtable.LookupAbsent, result)
}
