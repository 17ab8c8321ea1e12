// Package sst is the immutable sorted-string-table codec: a writer that
// flushes a memtable snapshot to a new file, and a reader that answers point
// lookups and full scans against it.
package sst

import (
	"io"

	"github.com/google/uuid"

	"github.com/chaturanga836/docstore/internal/storage/block"
)

// snapshot is the minimal view of a memtable a Writer needs: ascending
// key-ordered iteration over Put|Tombstone entries. internal/memtable.Memtable
// satisfies this via its Each method.
type snapshot interface {
	Each(fn func(key string, value []byte, tombstone bool) bool)
}

// NewName returns a fresh UUID-named SST file name, per the <uuid>.sst
// naming convention new flushes and compaction output use.
func NewName() string {
	return uuid.NewString() + ".sst"
}

// Write builds an SST at path from mt's entries in key order (the order Each
// yields, since the memtable is key-sorted) and durably persists it. When
// storage implements block.AtomicWriter, the whole file is written in one
// atomic replace; otherwise it falls back to create+write+sync, which is
// safe here because path is always a brand-new file name, never reused.
func Write(storage block.Storage, path string, mt snapshot) (entries int, err error) {
	var buf []byte
	mt.Each(func(key string, value []byte, tombstone bool) bool {
		buf = encodeRecord(buf, []byte(key), value, tombstone)
		entries++
		return true
	})

	if aw, ok := storage.(block.AtomicWriter); ok {
		if err := aw.WriteAtomic(path, buf); err != nil {
			return 0, err
		}
		return entries, nil
	}

	f, err := storage.Create(path)
	if err != nil {
		return 0, err
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return entries, nil
}

// Lookup is the three-way result of a point query against one SST.
type Lookup int

const (
	// NotFound means the key doesn't appear in this SST at all.
	NotFound Lookup = iota
	// Found means the key resolves to a live value in this SST.
	Found
	// Deleted means the key resolves to a tombstone in this SST.
	Deleted
)

// Reader answers point lookups and full scans against one SST file. It holds
// no open handle between calls — each Get/Iterate/ValidateIntegrity opens a
// fresh read handle from offset 0, so a Reader is safe for concurrent use
// from multiple goroutines (each scan is independent).
type Reader struct {
	storage block.Storage
	path    string
}

// Open returns a Reader over the SST at path. It does not read the file yet.
func Open(storage block.Storage, path string) *Reader {
	return &Reader{storage: storage, path: path}
}

// Path returns the file path this reader scans.
func (r *Reader) Path() string { return r.path }

// Get performs a linear scan from the start of the file looking for key,
// returning Found(value), Deleted, or NotFound. Acceptable for this design;
// an index block would be the optimization if scans become a bottleneck.
func (r *Reader) Get(key string) (Lookup, []byte, error) {
	buf, err := r.readAll()
	if err != nil {
		return NotFound, nil, err
	}

	needle := []byte(key)
	offset := 0
	for offset < len(buf) {
		k, v, tombstone, next, err := decodeRecord(buf, offset)
		if err != nil {
			return NotFound, nil, err
		}
		if string(k) == string(needle) {
			if tombstone {
				return Deleted, nil, nil
			}
			return Found, append([]byte(nil), v...), nil
		}
		offset = next
	}
	return NotFound, nil, nil
}

// Iterate reads every record in file order (which is memtable key order, for
// a freshly-built SST), calling fn with each key/value/tombstone, stopping
// early if fn returns false. This is compaction's precondition: it cannot
// merge SSTs without a way to walk one wholesale.
func (r *Reader) Iterate(fn func(key string, value []byte, tombstone bool) bool) error {
	buf, err := r.readAll()
	if err != nil {
		return err
	}
	offset := 0
	for offset < len(buf) {
		k, v, tombstone, next, err := decodeRecord(buf, offset)
		if err != nil {
			return err
		}
		if !fn(string(k), v, tombstone) {
			return nil
		}
		offset = next
	}
	return nil
}

// ValidateIntegrity scans the whole file once, verifying every record's flag
// and length fields are well-formed and that no record overruns the file.
// It returns the first violation found, wrapped in an IntegrityError giving
// its byte offset.
func (r *Reader) ValidateIntegrity() error {
	buf, err := r.readAll()
	if err != nil {
		return err
	}
	offset := 0
	for offset < len(buf) {
		_, _, _, next, err := decodeRecord(buf, offset)
		if err != nil {
			return &IntegrityError{Offset: offset, Err: err}
		}
		offset = next
	}
	return nil
}

func (r *Reader) readAll() ([]byte, error) {
	f, err := r.storage.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
