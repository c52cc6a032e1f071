package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_WriteReadRemove(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "dags_output"))
	require.NoError(t, err)

	path, err := d.Write("dag_erp_emp.py", []byte("print('hi')"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Root(), "dag_erp_emp.py"), path)
	assert.True(t, d.Exists(path))

	content, err := d.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(content))

	require.NoError(t, d.Remove(path))
	assert.False(t, d.Exists(path))
	require.NoError(t, d.Remove(path), "removing a missing file is not an error")

	_, err = d.Read(path)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDir_WriteNeverOverwrites(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	path, err := d.Write("a.py", []byte("first"))
	require.NoError(t, err)

	_, err = d.Write("a.py", []byte("second"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}

func TestDir_WriteRejectsPaths(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.py", "sub/a.py", ".hidden"} {
		_, err := d.Write(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
