package engine

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/document"
	"github.com/chaturanga836/docstore/internal/storage/block"
)

func mustOpen(t *testing.T, storage block.Storage) *Engine {
	t.Helper()
	e, err := Open(storage, "", DefaultOptions())
	require.NoError(t, err)
	return e
}

// S1 — replay across process restart.
func TestEngine_ReplayAcrossRestart(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	payload := []byte(`{"path":"users/a","fields":{"n":1}}`)
	require.NoError(t, e.Put("users/a", payload))
	require.NoError(t, e.Close())

	e2 := mustOpen(t, storage)
	defer e2.Close()
	got, err := e2.Get("users/a")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// S2 — rules denial.
func TestEngine_RulesDenial(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	defer e.Close()

	const rulesText = `service cloud.firestore {
  match /databases/{database}/documents {
    match /users/{u} {
      allow read, write: if true;
    }
  }
}`
	require.NoError(t, e.LoadRules(rulesText))

	require.NoError(t, e.Put("users/a", []byte(`{"path":"users/a","fields":{}}`)))

	err := e.Put("posts/1", []byte(`{"path":"posts/1","fields":{}}`))
	require.Error(t, err)
	assert.True(t, common.Is(err, common.ErrPermissionDenied))
}

// S3 — tombstone hides SST value, surviving a reopen.
func TestEngine_TombstoneHidesFlushedValue(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	require.NoError(t, e.Put("k", []byte("A")))
	require.NoError(t, e.Flush())
	require.NoError(t, e.Delete("k"))

	_, err := e.Get("k")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.ErrNotFound))
	require.NoError(t, e.Close())

	e2 := mustOpen(t, storage)
	defer e2.Close()
	_, err = e2.Get("k")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.ErrNotFound))
}

// S4 — index-driven query.
func TestEngine_IndexDrivenQuery(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	defer e.Close()

	require.NoError(t, e.Put("users/alice", []byte(`{"path":"users/alice","fields":{"active":true,"age":30}}`)))
	require.NoError(t, e.Put("users/bob", []byte(`{"path":"users/bob","fields":{"active":false,"age":25}}`)))
	require.NoError(t, e.Put("users/carol", []byte(`{"path":"users/carol","fields":{"active":true,"age":35}}`)))

	docs, err := e.Query("users", "active", "true")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	paths := map[string]bool{}
	for _, d := range docs {
		paths[d.Path] = true
	}
	assert.True(t, paths["users/alice"])
	assert.True(t, paths["users/carol"])
}

// S5 — corrupted WAL tail is tolerated, prior records still replay.
func TestEngine_CorruptedWALTailTolerated(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	require.NoError(t, e.Put("a", []byte("1")))
	require.NoError(t, e.Put("b", []byte("2")))
	require.NoError(t, e.Put("c", []byte("3")))
	require.NoError(t, e.Close())

	f, err := storage.Open("wal.log")
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	garbage := make([]byte, 50)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	_, err = f.Write(garbage)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	e2 := mustOpen(t, storage)
	defer e2.Close()
	for key, want := range map[string]string{"a": "1", "b": "2", "c": "3"} {
		got, err := e2.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

// S6 — batch atomicity floor.
func TestEngine_BatchAtomicityFloor(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	defer e.Close()

	b := e.NewBatch()
	b.Set("first", []byte("1"))
	b.Update("second", []byte("2"))
	b.Delete("third")
	require.NoError(t, e.CommitBatch(b))

	for _, key := range []string{"first", "second"} {
		_, err := e.Get(key)
		require.NoError(t, err)
	}
	_, err := e.Get("third")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.ErrNotFound))
}

func TestEngine_GetOrNilTranslatesNotFoundAndDenied(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	defer e.Close()

	v, err := e.GetOrNil("missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, e.LoadRules(`service cloud.firestore {
  match /databases/{database}/documents {
    match /locked/{id} {
      allow read, write: if false;
    }
  }
}`))
	v, err = e.GetOrNil("locked/1")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEngine_ListenReceivesInitialAndSubsequentSnapshots(t *testing.T) {
	storage := block.NewMemFS()
	e := mustOpen(t, storage)
	defer e.Close()

	var mu sync.Mutex
	var snapshots [][]document.Document
	id := e.Listen("users", "active", "true", func(docs []document.Document) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, docs)
	})
	defer e.Unregister(id)

	mu.Lock()
	require.Len(t, snapshots, 1)
	assert.Empty(t, snapshots[0])
	mu.Unlock()

	require.NoError(t, e.Put("users/dave", []byte(`{"path":"users/dave","fields":{"active":true}}`)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1], 1)
	assert.Equal(t, "users/dave", snapshots[1][0].Path)
}
