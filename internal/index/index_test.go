package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaturanga836/docstore/internal/document"
)

func TestIndex_PutThenQuery(t *testing.T) {
	ix := New()
	ix.OnPut("users/a", document.Document{
		Path:   "users/a",
		Fields: map[string]any{"status": "active", "age": float64(30)},
	})
	ix.OnPut("users/b", document.Document{
		Path:   "users/b",
		Fields: map[string]any{"status": "active", "age": float64(41)},
	})

	paths := ix.Query("users", "status", "active")
	sort.Strings(paths)
	assert.Equal(t, []string{"users/a", "users/b"}, paths)

	paths = ix.Query("users", "age", "30")
	assert.Equal(t, []string{"users/a"}, paths)

	assert.Nil(t, ix.Query("users", "status", "inactive"))
}

func TestIndex_PutReplacesPriorEntries(t *testing.T) {
	ix := New()
	ix.OnPut("users/a", document.Document{
		Path:   "users/a",
		Fields: map[string]any{"status": "active"},
	})
	ix.OnPut("users/a", document.Document{
		Path:   "users/a",
		Fields: map[string]any{"status": "inactive"},
	})

	assert.Nil(t, ix.Query("users", "status", "active"))
	assert.Equal(t, []string{"users/a"}, ix.Query("users", "status", "inactive"))
}

func TestIndex_OnDeleteRemovesAllTriples(t *testing.T) {
	ix := New()
	ix.OnPut("users/a", document.Document{
		Path:   "users/a",
		Fields: map[string]any{"status": "active", "age": float64(30)},
	})
	ix.OnDelete("users/a")

	assert.Nil(t, ix.Query("users", "status", "active"))
	assert.Nil(t, ix.Query("users", "age", "30"))
}
