package wal

import "io"

// Replay iterates every record in the log, invoking apply for each one that
// decodes successfully. A CRC mismatch or truncated trailing record stops
// the walk without reporting an error to the caller — a corrupted or
// partial tail is tolerated, not fatal (§4.3/§4.5). A record whose length
// fields don't fit within its own payload is skipped, not treated as a
// stopping condition, since the frame itself was intact.
func (w *WAL) Replay(apply func(Record) error) error {
	it, err := w.Iter()
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		payload, err := it.Next()
		if err == io.EOF || err == ErrCorrupt || err == ErrTruncated {
			return nil
		}
		if err != nil {
			return err
		}

		rec, decodeErr := decodeRecord(payload)
		if decodeErr != nil {
			continue
		}
		if applyErr := apply(rec); applyErr != nil {
			return applyErr
		}
	}
}
