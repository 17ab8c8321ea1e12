package engine

import (
	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/listener"
)

// Listen registers query+callback, immediately runs the query once and
// invokes the callback with the initial snapshot, and returns the new
// listener id. Every subsequent successful write re-runs the query and
// re-invokes the callback from notifyAllLocked, whether or not the write
// touched a document the query matches.
func (e *Engine) Listen(collection, field, value string, cb listener.Callback) common.ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	q := listener.Query{Collection: collection, Field: field, Value: value}
	id := e.listeners.Register(q, cb)
	e.listeners.Notify(id, e.queryLocked(q))
	return id
}

// Unregister removes id. A notification already snapshotted before this
// call may still fire.
func (e *Engine) Unregister(id common.ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners.Unregister(id)
}
