package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestS3FS_KeyPrefix(t *testing.T) {
	s := &S3FS{bucket: "b", prefix: "backups/prod"}
	assert.Equal(t, "backups/prod/users/a", s.key("users/a"))

	s = &S3FS{bucket: "b"}
	assert.Equal(t, "users/a", s.key("users/a"))
}

func TestS3FS_KeyCleansPath(t *testing.T) {
	s := &S3FS{bucket: "b"}
	assert.Equal(t, "wal.log", s.key("/wal.log"))
	assert.Equal(t, "a/b.sst", s.key("a//b.sst"))
}

func TestIsNoSuchKey(t *testing.T) {
	cases := map[string]bool{
		"NoSuchKey":        true,
		"object NotFound":  true,
		"status code: 404": true,
		"access denied":    false,
		"internal error":   false,
	}
	for msg, want := range cases {
		assert.Equal(t, want, isNoSuchKey(fakeErr(msg)), msg)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestS3Handle_WriteReadSeekTruncate(t *testing.T) {
	h := &s3Handle{key: "wal.log"}

	_, err := h.Write([]byte("hello world"))
	assert.NoError(t, err)

	_, err = h.Seek(0, 0)
	assert.NoError(t, err)
	buf := make([]byte, 5)
	n, err := h.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	assert.NoError(t, h.Truncate(5))
	assert.Equal(t, 5, len(h.buf))

	_, err = h.Seek(-1, 0)
	assert.Error(t, err)
}
