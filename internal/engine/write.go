package engine

import (
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/document"
	"github.com/chaturanga836/docstore/internal/validation"
	"github.com/chaturanga836/docstore/internal/wal"
)

// Put validates key and value, checks write access if rules are loaded,
// best-effort indexes the value as a Document, appends the WAL record, and
// only on a durable append applies the memtable mutation and fans out to
// listeners.
func (e *Engine) Put(key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard("put", func() error {
		if err := validation.Path(key); err != nil {
			return common.Wrap(common.ErrValidation, "put", key, err)
		}
		if err := validation.Value(value); err != nil {
			return common.Wrap(common.ErrValidation, "put", key, err)
		}
		if e.rules != nil && !e.rules.Allows(canonicalPath(key), "write") {
			return denyErr("put", key)
		}

		if doc, ok := document.Decode(value); ok {
			e.index.OnPut(key, doc)
		}

		if err := e.wal.Append(wal.Record{Op: wal.OpPut, Key: []byte(key), Value: value}); err != nil {
			return common.Wrap(common.ErrIO, "put", key, err)
		}

		e.mt.Put(key, value)
		e.notifyAllLocked()
		return nil
	})
}

// Delete validates key, checks write access, removes any index entries the
// path contributed, appends a tombstone WAL record, and on success writes
// the tombstone to the memtable and fans out.
func (e *Engine) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard("delete", func() error {
		if err := validation.Path(key); err != nil {
			return common.Wrap(common.ErrValidation, "delete", key, err)
		}
		if e.rules != nil && !e.rules.Allows(canonicalPath(key), "write") {
			return denyErr("delete", key)
		}

		e.index.OnDelete(key)

		if err := e.wal.Append(wal.Record{Op: wal.OpDelete, Key: []byte(key)}); err != nil {
			return common.Wrap(common.ErrIO, "delete", key, err)
		}

		e.mt.Delete(key)
		e.notifyAllLocked()
		return nil
	})
}
