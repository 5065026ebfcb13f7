package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFile_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "debug.log")

	rf, err := NewRotatingFile(path, WithMaxSize(100))
	require.NoError(t, err)
	defer rf.Close()

	data := []byte("level=DEBUG msg=\"[Tracker] Queuing hit\"\n")
	n, err := rf.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)
	assert.Equal(t, path, rf.Path())
}

func TestRotatingFile_RotatesAndKeepsBackups(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")

	rf, err := NewRotatingFile(path, WithMaxSize(50), WithMaxBackups(2))
	require.NoError(t, err)
	defer rf.Close()

	for _, b := range []byte("abcd") {
		_, err := rf.Write(bytes.Repeat([]byte{b}, 30))
		require.NoError(t, err)
	}

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("d"), 30), current)

	first, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("c"), 30), first)

	second, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("b"), 30), second)

	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err), "only two backups are kept")
}

func TestRotatingFile_OversizedWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")

	rf, err := NewRotatingFile(path, WithMaxSize(10))
	require.NoError(t, err)
	defer rf.Close()

	_, err = rf.Write(bytes.Repeat([]byte("x"), 25))
	require.NoError(t, err)

	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err), "an empty file is never rotated")
}

func TestRotatingFile_NoBackups(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")

	rf, err := NewRotatingFile(path, WithMaxSize(10), WithMaxBackups(0))
	require.NoError(t, err)
	defer rf.Close()

	_, err = rf.Write([]byte("old-old"))
	require.NoError(t, err)
	_, err = rf.Write([]byte("new-new"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new-new", string(content))

	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingFile_AppendsToExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	rf, err := NewRotatingFile(path)
	require.NoError(t, err)
	_, err = rf.Write([]byte("this run\n"))
	require.NoError(t, err)
	require.NoError(t, rf.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous run\nthis run\n", string(content))
}

func TestRotatingFile_Closed(t *testing.T) {
	t.Parallel()

	rf, err := NewRotatingFile(filepath.Join(t.TempDir(), "debug.log"))
	require.NoError(t, err)

	require.NoError(t, rf.Close())
	require.NoError(t, rf.Close())

	_, err = rf.Write([]byte("late"))
	require.ErrorIs(t, err, os.ErrClosed)
	require.ErrorIs(t, rf.Rotate(), os.ErrClosed)
}

func TestRotatingFile_Rotate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")

	rf, err := NewRotatingFile(path)
	require.NoError(t, err)
	defer rf.Close()

	_, err = rf.Write([]byte("before"))
	require.NoError(t, err)
	require.NoError(t, rf.Rotate())
	_, err = rf.Write([]byte("after"))
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, "before", string(backup))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after", string(current))
}
