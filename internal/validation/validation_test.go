package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_Valid(t *testing.T) {
	assert.NoError(t, Path("users/alice"))
	assert.NoError(t, Path("users/alice/posts/post1"))
	assert.NoError(t, Path("users-2024/alice_123"))
}

func TestPath_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":                "",
		"leading slash":        "/users/alice",
		"trailing slash":       "users/alice/",
		"consecutive slashes":  "users//alice",
		"invalid character":    "users/alice@domain",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			err := Path(path)
			if !assert.Error(t, err) {
				return
			}
			var verr *Error
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, "path", verr.Field)
		})
	}
}

func TestPath_TooLong(t *testing.T) {
	long := strings.Repeat("a/", 2100)
	assert.Error(t, Path(long))
}

func TestPath_TooDeep(t *testing.T) {
	segs := make([]string, 0, MaxPathDepth+1)
	for i := 0; i <= MaxPathDepth; i++ {
		segs = append(segs, "a")
	}
	assert.Error(t, Path(strings.Join(segs, "/")))
}

func TestValue(t *testing.T) {
	assert.NoError(t, Value([]byte("test")))
	assert.Error(t, Value([]byte{}))
	assert.Error(t, Value([]byte{0xff, 0xfe, 0xfd}))
}

func TestRules(t *testing.T) {
	valid := `
		service cloud.firestore {
			match /databases/{database}/documents {
				match /{document=**} {
					allow read, write: if true;
				}
			}
		}
	`
	assert.NoError(t, Rules(valid))
	assert.Error(t, Rules(""))
	assert.Error(t, Rules("invalid rules"))
}
