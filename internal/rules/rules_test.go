package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
service cloud.firestore {
  match /databases/{database}/documents {
    match /users/{u} {
      allow read, write: if true;
    }
    match /admin/{rest=**} {
      allow read: if false;
    }
  }
}
`

func TestParse_Sample(t *testing.T) {
	rs, err := Parse(sampleRules)
	require.NoError(t, err)
	assert.Equal(t, "cloud.firestore", rs.ServiceName)
	require.Len(t, rs.Matches, 1)
	require.Len(t, rs.Matches[0].Children, 2)
}

func TestAllows_NestedMatchGrantsReadWrite(t *testing.T) {
	rs, err := Parse(sampleRules)
	require.NoError(t, err)

	assert.True(t, rs.Allows("/databases/(default)/documents/users/alice", "read"))
	assert.True(t, rs.Allows("/databases/(default)/documents/users/alice", "write"))
}

func TestAllows_DeniesWhenConditionFalse(t *testing.T) {
	rs, err := Parse(sampleRules)
	require.NoError(t, err)
	assert.False(t, rs.Allows("/databases/(default)/documents/admin/anything/deep", "read"))
}

func TestAllows_DeniesWhenNoBlockMatches(t *testing.T) {
	rs, err := Parse(sampleRules)
	require.NoError(t, err)
	assert.False(t, rs.Allows("/databases/(default)/documents/orders/1", "read"))
}

func TestAllows_WildcardCapturesRemainder(t *testing.T) {
	rs, err := Parse(`
service cloud.firestore {
  match /public/{rest=**} {
    allow read: if true;
  }
}
`)
	require.NoError(t, err)
	assert.True(t, rs.Allows("/public/a/b/c", "read"))
	assert.True(t, rs.Allows("/public", "read"))
}

func TestParse_RejectsMalformedInput(t *testing.T) {
	_, err := Parse(`service cloud.firestore { match /users { allow read if true; } }`)
	assert.Error(t, err)
}

func TestParse_RejectsUnterminatedCondition(t *testing.T) {
	_, err := Parse(`service cloud.firestore { match /users { allow read: if true } }`)
	assert.Error(t, err)
}
