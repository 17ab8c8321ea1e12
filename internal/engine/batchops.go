package engine

import (
	"github.com/chaturanga836/docstore/internal/batch"
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/document"
	"github.com/chaturanga836/docstore/internal/validation"
)

// CommitBatch enforces the batch size bounds, validates and rules-checks
// every operation before touching the WAL, commits through internal/batch
// (all WAL records then all memtable mutations), updates the index for
// every operation, and fans out once at the end.
func (e *Engine) CommitBatch(b *batch.Batch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guard("commit_batch", func() error {
		if b.Len() > e.opts.MaxBatchOperations {
			return common.Newf(common.ErrInvalidArgument, "commit_batch",
				"batch has %d operations, exceeds limit %d", b.Len(), e.opts.MaxBatchOperations)
		}
		var totalBytes int64
		for _, op := range b.Operations() {
			totalBytes += int64(len(op.Value))
		}
		if totalBytes > e.opts.MaxBatchBytes {
			return common.Newf(common.ErrInvalidArgument, "commit_batch",
				"batch is %d bytes, exceeds limit %d", totalBytes, e.opts.MaxBatchBytes)
		}

		validate := func(op batch.Operation) error {
			if err := validation.Path(op.Path); err != nil {
				return common.Wrap(common.ErrValidation, "commit_batch", op.Path, err)
			}
			if op.Kind != batch.KindDelete {
				if err := validation.Value(op.Value); err != nil {
					return common.Wrap(common.ErrValidation, "commit_batch", op.Path, err)
				}
			}
			if e.rules != nil && !e.rules.Allows(canonicalPath(op.Path), "write") {
				return denyErr("commit_batch", op.Path)
			}
			return nil
		}

		if err := batch.Commit(e.wal, e.mt, b, validate); err != nil {
			return err
		}

		for _, op := range b.Operations() {
			if op.Kind == batch.KindDelete {
				e.index.OnDelete(op.Path)
				continue
			}
			if doc, ok := document.Decode(op.Value); ok {
				e.index.OnPut(op.Path, doc)
			}
		}

		e.notifyAllLocked()
		return nil
	})
}
