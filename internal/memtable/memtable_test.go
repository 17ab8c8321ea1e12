package memtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemtable_PutGet(t *testing.T) {
	m := New()
	m.Put("users/a", []byte("A"))

	v, ok := m.Get("users/a")
	assert.True(t, ok)
	assert.Equal(t, "A", string(v))
}

func TestMemtable_DeleteShadowsPut(t *testing.T) {
	m := New()
	m.Put("k", []byte("v"))
	m.Delete("k")

	_, ok := m.Get("k")
	assert.False(t, ok)

	result, _ := m.Lookup("k")
	assert.Equal(t, LookupTombstone, result)
}

func TestMemtable_LookupAbsent(t *testing.T) {
	m := New()
	result, _ := m.Lookup("missing")
	assert.Equal(t, LookupAbsent, result)
}

func TestMemtable_EachInKeyOrder(t *testing.T) {
	m := New()
	m.Put("c", []byte("3"))
	m.Put("a", []byte("1"))
	m.Put("b", []byte("2"))

	var keys []string
	m.Each(func(key string, value []byte, tombstone bool) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
