package wal

import (
	"encoding/binary"
	"fmt"
)

// encodeRecord renders a Record into the positional payload encoding:
// op:u8 key_len:u32LE key value_len:u32LE value batch_id_len:u32LE batch_id.
// Plain (non-batch) writes carry batch_id_len=0.
func encodeRecord(r Record) []byte {
	out := make([]byte, 0, 1+4+len(r.Key)+4+len(r.Value)+4+len(r.BatchID))
	out = append(out, byte(r.Op))
	out = appendUint32(out, uint32(len(r.Key)))
	out = append(out, r.Key...)
	out = appendUint32(out, uint32(len(r.Value)))
	out = append(out, r.Value...)
	out = appendUint32(out, uint32(len(r.BatchID)))
	out = append(out, r.BatchID...)
	return out
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

// decodeRecord parses a payload produced by encodeRecord. It returns an
// error if the payload is structurally truncated (fewer bytes than its own
// length fields claim) — a content-level failure the replay loop tolerates
// by skipping the record, distinct from frame-level CRC/length corruption.
func decodeRecord(payload []byte) (Record, error) {
	if len(payload) < 1+4 {
		return Record{}, fmt.Errorf("wal: record too short for header")
	}
	op := Op(payload[0])
	pos := 1

	keyLen, pos, err := readUint32(payload, pos)
	if err != nil {
		return Record{}, err
	}
	key, pos, err := readBytes(payload, pos, int(keyLen))
	if err != nil {
		return Record{}, err
	}

	valueLen, pos, err := readUint32(payload, pos)
	if err != nil {
		return Record{}, err
	}
	value, pos, err := readBytes(payload, pos, int(valueLen))
	if err != nil {
		return Record{}, err
	}

	var batchID string
	if pos+4 <= len(payload) {
		batchLen, next, err := readUint32(payload, pos)
		if err == nil {
			batchBytes, next2, err2 := readBytes(payload, next, int(batchLen))
			if err2 == nil {
				batchID = string(batchBytes)
				pos = next2
			}
		}
	}

	return Record{Op: op, Key: key, Value: value, BatchID: batchID}, nil
}

func readUint32(b []byte, pos int) (uint32, int, error) {
	if pos+4 > len(b) {
		return 0, pos, fmt.Errorf("wal: truncated length field")
	}
	return binary.LittleEndian.Uint32(b[pos : pos+4]), pos + 4, nil
}

func readBytes(b []byte, pos, n int) ([]byte, int, error) {
	if n < 0 || pos+n > len(b) {
		return nil, pos, fmt.Errorf("wal: truncated field body")
	}
	return b[pos : pos+n], pos + n, nil
}
