package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDint64(t *testing.T) {
	seen := make(map[int64]struct{})
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		assert.Positive(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func TestUUID(t *testing.T) {
	assert.NotEqual(t, UUID(), UUID())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))
	assert.False(t, CheckPassword("not-a-hash", "secret123"))
}

func TestRandomSecret(t *testing.T) {
	s := RandomSecret(16)
	assert.Len(t, s, 32)
	assert.NotEqual(t, s, RandomSecret(16))
}

func TestIfEmptyStr(t *testing.T) {
	assert.Equal(t, "fallback", IfEmptyStr("", "fallback"))
	assert.Equal(t, "value", IfEmptyStr("value", "fallback"))
}
