package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "lokirent:rentals/", escapeGlob("lokirent:rentals/"))
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}

func TestDedupeSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupeSorted([]string{"a", "a", "b", "c", "c"}))
	assert.Empty(t, dedupeSorted(nil))
}

func TestNewRedisObjectStore_InvalidUrl(t *testing.T) {
	_, err := NewRedisObjectStore("not-a-redis-url", "lokirent:")
	require.Error(t, err)
}
