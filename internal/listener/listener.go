// Package listener is the registry behind query+callback subscriptions:
// register/unregister, atomic id allocation, and a snapshot-then-notify
// fan-out that never holds the registry lock while a callback runs.
package listener

import (
	"fmt"
	"sync"

	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/document"
)

// Query is the equality query a registration watches — the same
// (collection, field, value) triple internal/index answers point lookups
// against.
type Query struct {
	Collection string
	Field      string
	Value      string
}

// Callback receives the documents matching a registration's query after a
// write the query's collection may have affected. Implementations must be
// safe to call synchronously on the writer's goroutine.
type Callback func(docs []document.Document)

type registration struct {
	query    Query
	callback Callback
	lastErr  error
}

// Entry is an immutable snapshot of one registration, safe to use after the
// registry's lock has been released.
type Entry struct {
	ID    common.ListenerID
	Query Query
}

// Registry holds every active registration. All mutation takes the write
// lock; Snapshot takes the read lock just long enough to copy out id+query
// pairs, so callers can run queries and invoke callbacks without holding
// any registry lock — callbacks must never re-enter the registry on the
// same goroutine.
type Registry struct {
	mu      sync.RWMutex
	entries map[common.ListenerID]*registration
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[common.ListenerID]*registration)}
}

// Register adds a query+callback pair and returns its new id.
func (r *Registry) Register(query Query, callback Callback) common.ListenerID {
	id := common.NextListenerID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &registration{query: query, callback: callback}
	return id
}

// Unregister removes id. A notification already in flight for id when
// Unregister is called may still complete — Snapshot had already copied it
// out before the removal took effect.
func (r *Registry) Unregister(id common.ListenerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Snapshot copies out every current (id, query) pair.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for id, reg := range r.entries {
		out = append(out, Entry{ID: id, Query: reg.query})
	}
	return out
}

// Notify invokes id's callback with docs, if id is still registered. A
// panicking callback is recovered and recorded as the registration's
// LastError rather than propagated — callback failures are isolated from
// the writer, best-effort, per the engine's fan-out contract.
func (r *Registry) Notify(id common.ListenerID, docs []document.Document) {
	r.mu.RLock()
	reg, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.mu.Lock()
			if still, ok := r.entries[id]; ok {
				still.lastErr = fmt.Errorf("listener: callback panicked: %v", rec)
			}
			r.mu.Unlock()
		}
	}()
	reg.callback(docs)
}

// LastError returns the most recent callback failure recorded for id, or
// nil if id is unknown or has never failed.
func (r *Registry) LastError(id common.ListenerID) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return nil
	}
	return reg.lastErr
}

// Len reports the number of active registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
