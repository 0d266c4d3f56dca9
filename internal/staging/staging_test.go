package staging

import (
	stderrors "errors"
	iofs "io/fs"
	"syscall"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArea_CreateOpenRemove(t *testing.T) {
	filesystem := billy.NewInMemoryFS()
	area, err := New(filesystem, "/staging", nil)
	require.NoError(t, err)

	file, path, err := area.Create("session-1")
	require.NoError(t, err)
	assert.Contains(t, path, "session-1")

	_, err = file.Write([]byte("staged bytes"))
	require.NoError(t, err)
	require.NoError(t, file.Close())

	reopened, err := area.Open(path)
	require.NoError(t, err)

	buf := make([]byte, 12)
	n, err := reopened.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "staged bytes", string(buf[:n]))
	require.NoError(t, reopened.Close())

	area.Remove(path)

	exists, err := filesystem.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestArea_Create_Truncates(t *testing.T) {
	filesystem := billy.NewInMemoryFS()
	area, err := New(filesystem, "/staging", nil)
	require.NoError(t, err)

	file, path, err := area.Create("session-1")
	require.NoError(t, err)
	_, err = file.Write([]byte("first attempt leftovers"))
	require.NoError(t, err)
	require.NoError(t, file.Close())

	file, _, err = area.Create("session-1")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := filesystem.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestArea_Remove_MissingFile(t *testing.T) {
	filesystem := billy.NewInMemoryFS()
	area, err := New(filesystem, "/staging", nil)
	require.NoError(t, err)

	// Best-effort: removing a path that never existed must not panic.
	area.Remove("/staging/never-created.staging")
	area.Remove("")
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "permission", err: iofs.ErrPermission, want: true},
		{name: "disk full", err: syscall.ENOSPC, want: true},
		{name: "quota exceeded", err: syscall.EDQUOT, want: true},
		{name: "wrapped disk full", err: stderrors.Join(stderrors.New("write"), syscall.ENOSPC), want: true},
		{name: "plain error", err: stderrors.New("transient hiccup"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}
