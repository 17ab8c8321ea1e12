// Package memtable is the ordered in-memory table of recent writes not yet
// materialized into an SST.
package memtable

// entry is one memtable slot: either a Put carrying bytes, or a tombstone
// marking a deletion.
type entry struct {
	value     []byte
	tombstone bool
}

// Memtable is an ordered mapping from key to Put(bytes)|Tombstone, with
// approximate byte-size accounting and no background eviction — flush is
// always triggered explicitly by the enclosing engine.
type Memtable struct {
	data     *skipList
	sizeByte int64
}

// New creates an empty memtable.
func New() *Memtable {
	return &Memtable{data: newSkipList()}
}

// Put stores value at key, overwriting any prior Put or Tombstone.
func (m *Memtable) Put(key string, value []byte) {
	m.data.put(key, entry{value: append([]byte(nil), value...)})
	m.sizeByte += int64(len(key) + len(value))
}

// Delete writes a tombstone at key.
func (m *Memtable) Delete(key string) {
	m.data.put(key, entry{tombstone: true})
	m.sizeByte += int64(len(key))
}

// Get returns (value, true) only for a Put; a Tombstone or absent key
// returns (nil, false) — callers distinguish "shadowed by tombstone" from
// "absent" via Lookup.
func (m *Memtable) Get(key string) ([]byte, bool) {
	e, ok := m.data.get(key)
	if !ok || e.tombstone {
		return nil, false
	}
	return e.value, true
}

// LookupResult classifies what a key resolves to within the memtable.
type LookupResult int

const (
	// LookupAbsent means the key has no entry in the memtable at all.
	LookupAbsent LookupResult = iota
	// LookupPut means the key resolves to a live value.
	LookupPut
	// LookupTombstone means the key is shadowed by a deletion.
	LookupTombstone
)

// Lookup resolves key to LookupPut(value), LookupTombstone, or LookupAbsent
// — the three-way result the read path needs to decide whether to fall
// through to the SSTs.
func (m *Memtable) Lookup(key string) (LookupResult, []byte) {
	e, ok := m.data.get(key)
	if !ok {
		return LookupAbsent, nil
	}
	if e.tombstone {
		return LookupTombstone, nil
	}
	return LookupPut, e.value
}

// Len returns the number of distinct keys held (live entries and
// tombstones alike).
func (m *Memtable) Len() int {
	return m.data.len()
}

// Size returns the approximate byte footprint of all keys and values
// accumulated so far.
func (m *Memtable) Size() int64 {
	return m.sizeByte
}

// Each iterates every (key, Put|Tombstone) pair in ascending key order —
// the order the SST builder writes records in.
func (m *Memtable) Each(fn func(key string, value []byte, tombstone bool) bool) {
	m.data.each(func(key string, e entry) bool {
		return fn(key, e.value, e.tombstone)
	})
}
