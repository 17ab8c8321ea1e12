package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFS_CreateWriteReopen(t *testing.T) {
	fs := NewMemFS()

	f, err := fs.Create("wal.log")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	reopened, err := fs.Open("wal.log")
	require.NoError(t, err)
	buf := make([]byte, 5)
	n, err := reopened.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestMemFS_ExistsAndRemove(t *testing.T) {
	fs := NewMemFS()
	ok, err := fs.Exists("x.sst")
	require.NoError(t, err)
	assert.False(t, ok)

	f, err := fs.Create("x.sst")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ok, err = fs.Exists("x.sst")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.Remove("x.sst"))
	ok, _ = fs.Exists("x.sst")
	assert.False(t, ok)
}

func TestMemFS_TryLockContention(t *testing.T) {
	fs := NewMemFS()

	lock, err := fs.TryLock("wal.lock")
	require.NoError(t, err)

	_, err = fs.TryLock("wal.lock")
	require.Error(t, err)
	var berr *Error
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, KindWouldBlock, berr.Kind)

	require.NoError(t, lock.Close())

	lock2, err := fs.TryLock("wal.lock")
	require.NoError(t, err)
	require.NoError(t, lock2.Close())
}

func TestMemFS_ListDir(t *testing.T) {
	fs := NewMemFS()
	_, _ = fs.Create("a.sst")
	_, _ = fs.Create("b.sst")

	entries, err := fs.ListDir("")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// A read-only Open/Read/Close cycle must never bump the entry's modTime:
// SST read-precedence is derived from ModTime, so reading an older file
// must not make it sort as newer than a file written after it.
func TestMemFS_ReadOnlyHandleDoesNotBumpModTime(t *testing.T) {
	fs := NewMemFS()

	older, err := fs.Create("1.sst")
	require.NoError(t, err)
	_, err = older.Write([]byte("old"))
	require.NoError(t, err)
	require.NoError(t, older.Close())

	entries, err := fs.ListDir("")
	require.NoError(t, err)
	var before int64 = -1
	for _, e := range entries {
		if e.Path == "1.sst" {
			before = e.ModTime.UnixNano()
		}
	}
	require.NotEqual(t, int64(-1), before)

	newer, err := fs.Create("2.sst")
	require.NoError(t, err)
	_, err = newer.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, newer.Close())

	reader, err := fs.Open("1.sst")
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = reader.Read(buf)
	require.NoError(t, err)
	require.NoError(t, reader.Sync())
	require.NoError(t, reader.Close())

	entries, err = fs.ListDir("")
	require.NoError(t, err)
	var after int64
	var newerModTime int64
	for _, e := range entries {
		switch e.Path {
		case "1.sst":
			after = e.ModTime.UnixNano()
		case "2.sst":
			newerModTime = e.ModTime.UnixNano()
		}
	}
	assert.Equal(t, before, after, "reading 1.sst must not change its modTime")
	assert.Less(t, before, newerModTime, "2.sst must still sort as newer than 1.sst")
}
