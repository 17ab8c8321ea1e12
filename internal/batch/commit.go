package batch

import "github.com/chaturanga836/docstore/internal/wal"

// WALAppender is the durability sink a commit writes through — satisfied by
// *wal.WAL.
type WALAppender interface {
	Append(rec wal.Record) error
}

// MemtableApplier is the in-memory sink a commit applies to after every WAL
// append in the batch has durably landed — satisfied by *memtable.Memtable.
type MemtableApplier interface {
	Put(key string, value []byte)
	Delete(key string)
}

// Commit validates every operation (if validate is non-nil), then appends
// every operation's WAL record, and only after all of them have durably
// landed applies the operations to the memtable. A validation failure on
// any operation aborts before a single WAL record is written, so neither
// earlier nor later operations in the batch become observable — the
// atomicity floor a per-op append-only WAL doesn't give for free.
func Commit(w WALAppender, mt MemtableApplier, b *Batch, validate func(Operation) error) error {
	if validate != nil {
		for _, op := range b.ops {
			if err := validate(op); err != nil {
				return err
			}
		}
	}

	for _, op := range b.ops {
		rec := wal.Record{Key: []byte(op.Path), BatchID: string(b.ID)}
		if op.Kind == KindDelete {
			rec.Op = wal.OpDelete
		} else {
			rec.Op = wal.OpPut
			rec.Value = op.Value
		}
		if err := w.Append(rec); err != nil {
			return err
		}
	}

	for _, op := range b.ops {
		if op.Kind == KindDelete {
			mt.Delete(op.Path)
		} else {
			mt.Put(op.Path, op.Value)
		}
	}
	return nil
}
