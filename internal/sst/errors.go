package sst

import (
	"errors"
	"strconv"
)

var (
	// errTruncated means the file ends inside a record's flag and key_len
	// header — the tail is short, not just malformed. A length field that
	// runs past the end of the file is reported as errBounds.
	errTruncated = errors.New("sst: truncated record")
	// errBounds means a decoded length field exceeds the sanity bound or
	// would overrun the file.
	errBounds = errors.New("sst: record length out of bounds")
	// errBadFlag means a record's leading byte isn't a recognized flag.
	errBadFlag = errors.New("sst: unrecognized record flag")
)

// IntegrityError reports the position of the first structurally invalid
// record found by Reader.ValidateIntegrity.
type IntegrityError struct {
	Offset int
	Err    error
}

func (e *IntegrityError) Error() string {
	return "sst: integrity check failed at offset " + strconv.Itoa(e.Offset) + ": " + e.Err.Error()
}

func (e *IntegrityError) Unwrap() error { return e.Err }
