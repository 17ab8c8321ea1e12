package sst

import "encoding/binary"

// flag distinguishes a live value from a deletion marker within an SST.
type flag uint8

const (
	flagPut       flag = 0
	flagTombstone flag = 1
)

// MaxKeySize and MaxValueSize bound a single record. An SST built from a
// memtable whose paths and values passed internal/validation on the write
// path never exceeds them, but the reader re-checks them anyway since SSTs
// are read back across process restarts.
const (
	MaxKeySize   = 1 << 20        // 1 MiB
	MaxValueSize = 100 << 20      // 100 MiB
	recordHeader = 1 + 4 + 4      // flag + key_len + value_len, value bytes appended after key
)

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// encodeRecord appends one SST record (flag, key_len, key, value_len, value)
// to buf in the wire format the reader expects.
func encodeRecord(buf []byte, key, value []byte, tombstone bool) []byte {
	f := flagPut
	if tombstone {
		f = flagTombstone
		value = nil
	}
	buf = append(buf, byte(f))
	buf = appendUint32(buf, uint32(len(key)))
	buf = append(buf, key...)
	buf = appendUint32(buf, uint32(len(value)))
	buf = append(buf, value...)
	return buf
}

// decodeRecord reads one record from buf at offset, returning the record's
// fields, the offset immediately past it, and an error if the record's
// framing is structurally invalid or would overrun buf.
func decodeRecord(buf []byte, offset int) (key, value []byte, tombstone bool, next int, err error) {
	if offset+1+4 > len(buf) {
		return nil, nil, false, 0, errTruncated
	}
	f := flag(buf[offset])
	offset++
	keyLen := binary.LittleEndian.Uint32(buf[offset : offset+4])
	offset += 4
	if keyLen > MaxKeySize || offset+int(keyLen)+4 > len(buf) {
		return nil, nil, false, 0, errBounds
	}
	key = buf[offset : offset+int(keyLen)]
	offset += int(keyLen)

	valueLen := binary.LittleEndian.Uint32(buf[offset : offset+4])
	offset += 4
	if valueLen > MaxValueSize || offset+int(valueLen) > len(buf) {
		return nil, nil, false, 0, errBounds
	}
	value = buf[offset : offset+int(valueLen)]
	offset += int(valueLen)

	switch f {
	case flagPut:
		return key, value, false, offset, nil
	case flagTombstone:
		return key, nil, true, offset, nil
	default:
		return nil, nil, false, 0, errBadFlag
	}
}
