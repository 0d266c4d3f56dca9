package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_Open(t *testing.T) {
	filesystem := billy.NewInMemoryFS()
	require.NoError(t, filesystem.WriteFile("/data/movie.bin", []byte("file bytes"), 0o644))

	src := NewFile(filesystem, "/data/movie.bin")
	assert.Equal(t, "/data/movie.bin", src.Name())

	rc, size, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, int64(10), size)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "file bytes", string(data))
}

func TestFile_Open_Missing(t *testing.T) {
	src := NewFile(billy.NewInMemoryFS(), "/no/such/file")

	_, _, err := src.Open(context.Background())
	assert.Error(t, err)
}

func TestFile_Open_Restartable(t *testing.T) {
	filesystem := billy.NewInMemoryFS()
	require.NoError(t, filesystem.WriteFile("/data/movie.bin", []byte("file bytes"), 0o644))
	src := NewFile(filesystem, "/data/movie.bin")

	// A second open restarts from the beginning.
	for i := 0; i < 2; i++ {
		rc, _, err := src.Open(context.Background())
		require.NoError(t, err)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "file bytes", string(data))
	}
}

func TestHTTP_Open(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("remote bytes"))
	}))
	defer server.Close()

	src := NewHTTP(nil, server.URL)
	assert.Equal(t, server.URL, src.Name())

	rc, size, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, int64(12), size)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "remote bytes", string(data))
}

func TestHTTP_Open_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := NewHTTP(nil, server.URL).Open(context.Background())
	assert.Error(t, err)
}

func TestHTTP_Open_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewHTTP(nil, server.URL).Open(ctx)
	assert.Error(t, err)
}
