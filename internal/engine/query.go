package engine

import (
	"github.com/chaturanga836/docstore/internal/document"
	"github.com/chaturanga836/docstore/internal/listener"
)

// Query answers an equality lookup on (collection, field, value) via the
// inverted index, filters candidates through read access, materializes
// each surviving path through the same read path Get uses, and keeps only
// the ones that still decode as a Document.
func (e *Engine) Query(collection, field, value string) ([]document.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []document.Document
	err := e.guard("query", func() error {
		out = e.queryLocked(listener.Query{Collection: collection, Field: field, Value: value})
		return nil
	})
	return out, err
}

// queryLocked is Query's body shared with Listen's initial snapshot and
// notifyAllLocked's re-execution on every write. Must be called with mu
// held.
func (e *Engine) queryLocked(q listener.Query) []document.Document {
	candidates := e.index.Query(q.Collection, q.Field, q.Value)
	docs := make([]document.Document, 0, len(candidates))
	for _, p := range candidates {
		if e.rules != nil && !e.rules.Allows(canonicalPath(p), "read") {
			continue
		}
		val, found := e.lookupLocked(p)
		if !found {
			continue
		}
		doc, ok := document.Decode(val)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
