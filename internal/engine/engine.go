// Package engine is the façade that orchestrates every other package into
// the embedded document store: open/recovery, put/delete/get/query/listen,
// flush/compact, and batch commit, all behind a single mutex.
package engine

import (
	"context"
	"log"
	"path"
	"sort"
	"sync"

	"github.com/chaturanga836/docstore/internal/batch"
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/compaction"
	"github.com/chaturanga836/docstore/internal/document"
	"github.com/chaturanga836/docstore/internal/index"
	"github.com/chaturanga836/docstore/internal/listener"
	"github.com/chaturanga836/docstore/internal/memtable"
	"github.com/chaturanga836/docstore/internal/rules"
	"github.com/chaturanga836/docstore/internal/sst"
	"github.com/chaturanga836/docstore/internal/storage/block"
	"github.com/chaturanga836/docstore/internal/validation"
	"github.com/chaturanga836/docstore/internal/wal"
)

// canonicalPrefix is prepended to every user-supplied key before it is
// handed to the rules engine — the conventional root the grammar's example
// patterns are written against. The first two literal segments and the
// wildcard {database} in that convention are fixed for this engine: there
// is exactly one logical database per directory.
const canonicalPrefix = "/databases/(default)/documents/"

func canonicalPath(key string) string {
	return canonicalPrefix + key
}

// Engine holds every component the store needs, all mutated under mu. It is
// single-writer: external concurrency across multiple Engine handles on the
// same directory is not supported, only the OS-level exclusive lock on
// wal.lock guards against it.
type Engine struct {
	mu sync.Mutex

	storage  block.Storage
	dir      string
	walPath  string
	lockPath string

	lock  block.Lock
	wal   *wal.WAL
	mt    *memtable.Memtable
	ssts  []*sstHandle // newest-first; defines read precedence
	index *index.Index

	listeners *listener.Registry
	rules     *rules.Ruleset // nil until LoadRules succeeds: unrestricted access

	opts   Options
	closed bool
}

// Open acquires the directory's exclusive lock, replays its WAL into a
// fresh memtable and index, and discovers existing SSTs newest-first. dir
// is a path within storage — "" addresses storage's own root, matching how
// internal/compaction and internal/sst address a directory.
func Open(storage block.Storage, dir string, opts Options) (*Engine, error) {
	if err := storage.MkdirAll(dir); err != nil {
		return nil, common.Wrap(common.ErrIO, "open", dir, err)
	}

	lockPath := path.Join(dir, "wal.lock")
	lock, err := storage.Lock(lockPath)
	if err != nil {
		return nil, common.Wrap(common.ErrIO, "open", lockPath, err)
	}

	walPath := path.Join(dir, "wal.log")
	w, err := wal.Open(storage, walPath)
	if err != nil {
		lock.Close()
		return nil, common.Wrap(common.ErrIO, "open", walPath, err)
	}

	mt := memtable.New()
	ix := index.New()
	recovered := 0
	replayErr := w.Replay(func(rec wal.Record) error {
		key := string(rec.Key)
		switch rec.Op {
		case wal.OpPut:
			if err := validation.Path(key); err != nil {
				return nil
			}
			if err := validation.Value(rec.Value); err != nil {
				return nil
			}
			mt.Put(key, rec.Value)
			if doc, ok := document.Decode(rec.Value); ok {
				ix.OnPut(key, doc)
			}
		case wal.OpDelete:
			if err := validation.Path(key); err != nil {
				return nil
			}
			mt.Delete(key)
			ix.OnDelete(key)
		}
		recovered++
		return nil
	})
	if replayErr != nil {
		w.Close()
		lock.Close()
		return nil, common.Wrap(common.ErrCorruption, "open", walPath, replayErr)
	}
	log.Printf("engine: recovered %d wal records from %s", recovered, walPath)

	handles, err := loadSSTHandles(storage, dir)
	if err != nil {
		w.Close()
		lock.Close()
		return nil, common.Wrap(common.ErrIO, "open", dir, err)
	}

	return &Engine{
		storage:   storage,
		dir:       dir,
		walPath:   walPath,
		lockPath:  lockPath,
		lock:      lock,
		wal:       w,
		mt:        mt,
		ssts:      handles,
		index:     ix,
		listeners: listener.New(),
		opts:      opts,
	}, nil
}

// loadSSTHandles lists dir's ".sst" files and orders them newest-first by
// modification time — the order that defines read precedence among SSTs.
func loadSSTHandles(storage block.Storage, dir string) ([]*sstHandle, error) {
	infos, err := storage.ListDir(dir)
	if err != nil {
		return nil, err
	}
	var sstInfos []block.FileInfo
	for _, info := range infos {
		if path.Ext(info.Path) == ".sst" {
			sstInfos = append(sstInfos, info)
		}
	}
	sort.Slice(sstInfos, func(i, j int) bool {
		return sstInfos[i].ModTime.After(sstInfos[j].ModTime)
	})
	handles := make([]*sstHandle, 0, len(sstInfos))
	for _, info := range sstInfos {
		handles = append(handles, newSSTHandle(storage, info.Path))
	}
	return handles, nil
}

// Close releases the WAL handle and the directory lock. The engine must
// not be used afterward.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	werr := e.wal.Close()
	lerr := e.lock.Close()
	if werr != nil {
		return common.Wrap(common.ErrIO, "close", e.walPath, werr)
	}
	if lerr != nil {
		return common.Wrap(common.ErrIO, "close", e.lockPath, lerr)
	}
	return nil
}

// Health reports whether the engine can still reach its directory. It
// carries no network or process checks — those are a binding's concern.
func (e *Engine) Health(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.New(common.ErrIO, "health")
	}
	if _, err := e.storage.ListDir(e.dir); err != nil {
		return common.Wrap(common.ErrIO, "health", e.dir, err)
	}
	return nil
}

// denyErr builds the uniform PermissionDenied result every rules-gated
// operation returns on deny.
func denyErr(op, path string) error {
	return &common.StoreError{Code: common.ErrPermissionDenied, Op: op, Path: path}
}

// guard runs fn and recovers any panic escaping it, logging a diagnostic
// and returning an IO error instead of crashing the process. Go's
// sync.Mutex has no poisoning concept — a panic inside a locked section
// still unlocks cleanly via defer — so this is the idiomatic-Go analogue of
// the reference design's poisoned-lock recovery: isolate the panic, keep
// the engine usable for the next call.
func (e *Engine) guard(op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("engine: recovered from panic in %s: %v", op, rec)
			err = common.Newf(common.ErrIO, op, "recovered from panic: %v", rec)
		}
	}()
	return fn()
}

// notifyAllLocked snapshots every registration and re-runs its query,
// invoking the matching callback through the registry so a panicking
// callback is recorded rather than propagated. Must be called with mu held;
// the registry's own lock is released before callbacks fire.
func (e *Engine) notifyAllLocked() {
	for _, entry := range e.listeners.Snapshot() {
		docs := e.queryLocked(entry.Query)
		e.listeners.Notify(entry.ID, docs)
	}
}

// NewBatch returns an empty write batch ready for Set/Delete calls and
// eventual CommitBatch.
func (e *Engine) NewBatch() *batch.Batch {
	return batch.New()
}
