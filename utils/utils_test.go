package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lokirent.log")
	require.NoError(t, os.WriteFile(path, []byte("first line\nsecond line\n"), 0o600))

	data, err := ReadFileTail(path, 12)
	require.NoError(t, err)
	assert.Equal(t, "second line\n", string(data))

	data, err = ReadFileTail(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line\n", string(data))

	_, err = ReadFileTail(filepath.Join(t.TempDir(), "missing.log"), 10)
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, Paginate(items, 1, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Empty(t, Paginate(items, 4, 2))
	assert.Empty(t, Paginate(items, 0, 2))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken("mgmt_", 16)
	require.NoError(t, err)
	b, err := RandomToken("mgmt_", 16)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "mgmt_"))
	assert.Len(t, a, len("mgmt_")+32)
	assert.NotEqual(t, a, b)
}
