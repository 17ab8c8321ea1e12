package common

import (
	"sync/atomic"
)

// ListenerID identifies a registered listener callback within a single
// process lifetime. IDs are never reused.
type ListenerID uint64

// listenerSeq hands out monotonically increasing ListenerIDs.
var listenerSeq uint64

// NextListenerID returns the next unused ListenerID.
func NextListenerID() ListenerID {
	return ListenerID(atomic.AddUint64(&listenerSeq, 1))
}

// BatchID identifies a single write batch for logging and diagnostics.
type BatchID string
