// Package batch is the write-batch accumulator: a sequence of Set/Update/
// Delete operations collected under one batch id. A commit validates every
// operation before writing anything, and applies the memtable only after
// every WAL record has been appended; a WAL append that fails partway
// through leaves the earlier records of the batch in the WAL (replayed on
// the next open) but none of them in the memtable.
package batch

import (
	"github.com/google/uuid"

	"github.com/chaturanga836/docstore/internal/common"
)

// Kind identifies one operation within a batch.
type Kind int

const (
	// KindSet stores Value at Path.
	KindSet Kind = iota
	// KindUpdate stores Value at Path. Semantically equivalent to KindSet —
	// the engine has no partial-field merge, so an update is a full
	// replace — kept as its own named operation because callers reason
	// about "update an existing document" vs. "set a path" differently.
	KindUpdate
	// KindDelete writes a tombstone at Path.
	KindDelete
)

// Operation is one accumulated batch entry.
type Operation struct {
	Kind  Kind
	Path  string
	Value []byte
}

// Batch accumulates operations under a single id, and keeps a shadow map of
// each path's latest in-batch operation for read-your-writes introspection
// before commit through Peek. Engine.Get never consults it, so uncommitted
// batch state is never observable through a read.
type Batch struct {
	ID     common.BatchID
	ops    []Operation
	shadow map[string]Operation
}

// New returns an empty batch with a fresh id.
func New() *Batch {
	return &Batch{
		ID:     common.BatchID(uuid.NewString()),
		shadow: make(map[string]Operation),
	}
}

// Set appends a Set operation.
func (b *Batch) Set(path string, value []byte) *Batch {
	op := Operation{Kind: KindSet, Path: path, Value: append([]byte(nil), value...)}
	b.ops = append(b.ops, op)
	b.shadow[path] = op
	return b
}

// Update appends an Update operation — semantically a Set, named
// separately to mirror the documented operation set.
func (b *Batch) Update(path string, value []byte) *Batch {
	op := Operation{Kind: KindUpdate, Path: path, Value: append([]byte(nil), value...)}
	b.ops = append(b.ops, op)
	b.shadow[path] = op
	return b
}

// Delete appends a Delete operation.
func (b *Batch) Delete(path string) *Batch {
	op := Operation{Kind: KindDelete, Path: path}
	b.ops = append(b.ops, op)
	b.shadow[path] = op
	return b
}

// Operations returns the accumulated operations in insertion order.
func (b *Batch) Operations() []Operation {
	return b.ops
}

// Len reports the number of accumulated operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// IsEmpty reports whether the batch has no operations.
func (b *Batch) IsEmpty() bool {
	return len(b.ops) == 0
}

// Peek returns path's most recent in-batch operation, for read-your-writes
// checks before commit (e.g. validating a later op against an earlier one
// in the same batch).
func (b *Batch) Peek(path string) (Operation, bool) {
	op, ok := b.shadow[path]
	return op, ok
}
