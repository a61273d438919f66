// pkg/filesystem/os_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem, /bin/sh
// PURPOSE: Test the OS filesystem wrapper and the exec runner

package filesystem

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFS_WriteReadRemove(t *testing.T) {
	fsys := NewOS()
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, fsys.MkdirAll(dir, 0755))
	file := filepath.Join(dir, "entry.desktop")
	require.NoError(t, fsys.WriteFile(file, []byte("[Desktop Entry]\n"), 0644))
	assert.True(t, Exists(fsys, file))

	data, err := fsys.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "[Desktop Entry]\n", string(data))

	require.NoError(t, fsys.Chmod(file, 0755))
	info, err := fsys.Stat(file)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, "-rwxr-xr-x", info.Mode().String())
	}

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry.desktop", entries[0].Name())

	require.NoError(t, fsys.Remove(file))
	assert.False(t, Exists(fsys, file))
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	r := NewExecRunner()

	out, err := r.Run("sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = r.Run("sh", "-c", "exit 3")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Equal(t, 3, ExitCode(err))

	_, err = r.LookPath("definitely-not-a-real-binary-menuinst")
	assert.True(t, errors.IsErrorCode(err, errors.ErrExecutableMissing))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New(errors.ErrInternal, "not started")))
}
