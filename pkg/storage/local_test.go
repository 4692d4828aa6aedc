package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "3.2 MB", FormatSize(3355443))
	assert.Equal(t, "2.0 GB", FormatSize(2*1024*1024*1024))
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("notes.PDF", AllowedResourceExtensions))
	assert.True(t, AllowedExtension("photo.jpeg", AllowedMediaExtensions))
	assert.False(t, AllowedExtension("tool.exe", AllowedResourceExtensions))
	assert.False(t, AllowedExtension("noext", AllowedMediaExtensions))
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeForFilename("spec.pdf"))
	assert.Equal(t, "video/mp4", ContentTypeForFilename("run.mp4"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("weird.bin"))
}

func TestLocal_SaveAndRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads", "resources")
	store := NewLocal(root, nil)

	path, size, err := store.Save("doc.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, filepath.Join(root, "doc.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing twice or removing nothing is fine.
	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(""))
}

func TestLocal_SaveStripsDirectoryComponents(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root, nil)

	path, _, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "passwd"), path)
}
