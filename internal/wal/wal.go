// Package wal implements the append-only, CRC32-framed write-ahead log: a
// single never-rewritten file replaced wholesale (Rotate) only after a
// successful flush.
package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/chaturanga836/docstore/internal/storage/block"
)

const frameHeaderSize = 4 + 4 // payload_len:u32 LE, crc32:u32 LE

// WAL wraps a single append-only log file. Appends are fsynced before
// returning; the file is only ever replaced wholesale (Rotate), never
// rewritten in place.
type WAL struct {
	storage block.Storage
	path    string
	file    block.File
}

// Open opens or creates the log file at path, positioned at the end for
// further appends.
func Open(storage block.Storage, path string) (*WAL, error) {
	exists, err := storage.Exists(path)
	if err != nil {
		return nil, err
	}
	var f block.File
	if exists {
		f, err = storage.Open(path)
	} else {
		f, err = storage.Create(path)
	}
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, err
	}
	return &WAL{storage: storage, path: path, file: f}, nil
}

// Append encodes rec, writes its CRC-framed record, and fsyncs before
// returning. It returns only after the record is durable.
func (w *WAL) Append(rec Record) error {
	payload := encodeRecord(rec)
	frame := make([]byte, 0, frameHeaderSize+len(payload))
	frame = appendUint32(frame, uint32(len(payload)))
	frame = appendUint32(frame, crc32.ChecksumIEEE(payload))
	frame = append(frame, payload...)

	if _, err := w.file.Write(frame); err != nil {
		return fmt.Errorf("wal: append: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("wal: sync: %w", err)
	}
	return nil
}

// Close closes the underlying file handle.
func (w *WAL) Close() error {
	return w.file.Close()
}

// Rotate replaces the log with a fresh, empty file at the same path. Used
// after a successful flush to discard records the new SST now covers.
func (w *WAL) Rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	f, err := w.storage.Create(w.path)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

// Iterator replays a WAL from a fresh read handle positioned at the start.
type Iterator struct {
	file block.File
}

// Iter opens a fresh read handle over the log and returns an Iterator
// positioned at the start.
func (w *WAL) Iter() (*Iterator, error) {
	f, err := w.storage.Open(w.path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return &Iterator{file: f}, nil
}

// Close releases the iterator's read handle.
func (it *Iterator) Close() error {
	return it.file.Close()
}

// ErrCorrupt is returned by Next when a record's CRC does not match its
// payload. ErrTruncated is returned when the file ends partway through a
// record. Both terminate the iterator; callers resume replay by treating
// either as end-of-log, per the WAL's tolerance for a corrupted or
// partial trailing record.
var (
	ErrCorrupt   = fmt.Errorf("wal: crc mismatch")
	ErrTruncated = fmt.Errorf("wal: truncated record")
)

// Next returns the next record's payload, or io.EOF at a clean end of file.
// A CRC mismatch returns ErrCorrupt; a record cut short by end-of-file
// returns ErrTruncated. Both are terminal: the iterator must not be used
// again after either.
func (it *Iterator) Next() ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	n, err := io.ReadFull(it.file, header)
	if err == io.EOF && n == 0 {
		return nil, io.EOF
	}
	if err != nil {
		return nil, ErrTruncated
	}

	payloadLen := binary.LittleEndian.Uint32(header[0:4])
	wantCRC := binary.LittleEndian.Uint32(header[4:8])

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(it.file, payload); err != nil {
		return nil, ErrTruncated
	}

	if crc32.ChecksumIEEE(payload) != wantCRC {
		return nil, ErrCorrupt
	}
	return payload, nil
}
