// Package index is the in-memory inverted equality index: collection ->
// field -> stringified value -> set of document paths, plus a reverse
// (path -> triples) map so removal doesn't require scanning the whole
// forward structure.
package index

import (
	"sync"

	"github.com/chaturanga836/docstore/internal/document"
)

type triple struct {
	collection string
	field      string
	value      string
}

// Index is the query-time structure behind equality lookups. All mutation
// happens under a single write lock, held for the duration of OnPut/OnDelete
// — short critical sections since both operate on plain maps.
type Index struct {
	mu      sync.RWMutex
	forward map[string]map[string]map[string]map[string]struct{} // collection -> field -> value -> paths
	reverse map[string]map[triple]struct{}                       // path -> triples it contributes
}

// New returns an empty index.
func New() *Index {
	return &Index{
		forward: make(map[string]map[string]map[string]map[string]struct{}),
		reverse: make(map[string]map[triple]struct{}),
	}
}

// OnPut indexes doc's fields under its collection, replacing whatever
// entries a prior OnPut for the same path contributed. Failure is not
// possible here by construction — callers tolerate a failed Decode upstream
// by simply not calling OnPut, per the write path's best-effort indexing.
func (ix *Index) OnPut(path string, doc document.Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(path)

	collection := doc.Collection()
	triples := make(map[triple]struct{}, len(doc.Fields))
	for field, value := range doc.Fields {
		token := document.Stringify(value)
		t := triple{collection: collection, field: field, value: token}
		ix.insertLocked(t, path)
		triples[t] = struct{}{}
	}
	if len(triples) > 0 {
		ix.reverse[path] = triples
	}
}

// OnDelete removes every entry path contributed, wherever it landed in the
// forward structure — an O(1)-per-triple operation via the reverse index,
// not a full scan.
func (ix *Index) OnDelete(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

func (ix *Index) insertLocked(t triple, path string) {
	byField, ok := ix.forward[t.collection]
	if !ok {
		byField = make(map[string]map[string]map[string]struct{})
		ix.forward[t.collection] = byField
	}
	byValue, ok := byField[t.field]
	if !ok {
		byValue = make(map[string]map[string]struct{})
		byField[t.field] = byValue
	}
	paths, ok := byValue[t.value]
	if !ok {
		paths = make(map[string]struct{})
		byValue[t.value] = paths
	}
	paths[path] = struct{}{}
}

func (ix *Index) removeLocked(path string) {
	for t := range ix.reverse[path] {
		if byField, ok := ix.forward[t.collection]; ok {
			if byValue, ok := byField[t.field]; ok {
				if paths, ok := byValue[t.value]; ok {
					delete(paths, path)
					if len(paths) == 0 {
						delete(byValue, t.value)
					}
				}
				if len(byValue) == 0 {
					delete(byField, t.field)
				}
			}
			if len(byField) == 0 {
				delete(ix.forward, t.collection)
			}
		}
	}
	delete(ix.reverse, path)
}

// Query returns the candidate paths for an equality match on
// (collection, field, stringify(value)). The returned slice is a fresh copy,
// safe to use after the lock is released; order is unspecified.
func (ix *Index) Query(collection, field, value string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	paths := ix.forward[collection][field][value]
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for p := range paths {
		out = append(out, p)
	}
	return out
}
