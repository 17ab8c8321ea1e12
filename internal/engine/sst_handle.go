package engine

import (
	"sync"

	"github.com/chaturanga836/docstore/internal/sst"
	"github.com/chaturanga836/docstore/internal/storage/block"
)

// sstHandle wraps one SST reader in its own mutex, so the integrity check
// and the lookup that follows it run as one unit per file. (The Reader
// itself opens a fresh read handle for every call and shares no file
// position between calls.) Revalidating integrity before every use
// is the SST-side half of the engine's poisoned-lock-recovery story — a
// reader that fails validation is skipped rather than trusted again.
type sstHandle struct {
	mu     sync.Mutex
	reader *sst.Reader
}

func newSSTHandle(storage block.Storage, path string) *sstHandle {
	return &sstHandle{reader: sst.Open(storage, path)}
}

func (h *sstHandle) get(key string) (sst.Lookup, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.reader.ValidateIntegrity(); err != nil {
		return sst.NotFound, nil, err
	}
	return h.reader.Get(key)
}
