package engine

import (
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/memtable"
	"github.com/chaturanga836/docstore/internal/sst"
)

// Get checks read access if rules are loaded, then resolves key against the
// memtable and, on a miss, the SSTs newest-first. Absence is reported as
// ErrNotFound, not a nil-nil result, so callers can branch with
// common.Is — GetOrNil exists for Option-like call sites.
func (e *Engine) Get(key string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []byte
	err := e.guard("get", func() error {
		if e.rules != nil && !e.rules.Allows(canonicalPath(key), "read") {
			return denyErr("get", key)
		}
		value, found := e.lookupLocked(key)
		if !found {
			return &common.StoreError{Code: common.ErrNotFound, Op: "get", Path: key}
		}
		out = value
		return nil
	})
	return out, err
}

// GetOrNil calls Get and translates PermissionDenied and NotFound into
// (nil, nil), for callers that only want a present/absent value and don't
// need to distinguish why a value is missing.
func (e *Engine) GetOrNil(key string) ([]byte, error) {
	v, err := e.Get(key)
	if err != nil {
		if common.Is(err, common.ErrPermissionDenied) || common.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// lookupLocked resolves key through the memtable first, then the SSTs
// newest-first, matching the read-merge precedence spelled out in §4.8:
// a Put or Tombstone in the memtable shadows every SST; among SSTs the
// first (newest) one that mentions key wins. Must be called with mu held.
func (e *Engine) lookupLocked(key string) ([]byte, bool) {
	switch result, val := e.mt.Lookup(key); result {
	case memtable.LookupPut:
		return val, true
	case memtable.LookupTombstone:
		return nil, false
	}

	for _, h := range e.ssts {
		lookup, val, err := h.get(key)
		if err != nil {
			continue
		}
		switch lookup {
		case sst.Found:
			return val, true
		case sst.Deleted:
			return nil, false
		}
	}
	return nil, false
}
