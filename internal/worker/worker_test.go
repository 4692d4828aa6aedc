package worker

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipDir_ArchivesNestedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tasks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks", "tasks.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{}"), 0o644))

	dst := filepath.Join(t.TempDir(), "backup.zip")
	require.NoError(t, zipDir(dir, dst))

	zr, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["tasks/tasks.json"])
	assert.True(t, names["users.json"])
}

func TestPruneArchives_RemovesOnlyExpiredBackups(t *testing.T) {
	dir := t.TempDir()
	oldArchive := filepath.Join(dir, archivePrefix+"20250101000000.zip")
	newArchive := filepath.Join(dir, archivePrefix+"20260801000000.zip")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldArchive, newArchive, unrelated} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	stale := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(oldArchive, stale, stale))
	require.NoError(t, os.Chtimes(unrelated, stale, stale))

	removed, err := pruneArchives(dir, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldArchive)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newArchive)
	assert.NoError(t, err)
	// Files that are not backup archives are left alone.
	_, err = os.Stat(unrelated)
	assert.NoError(t, err)
}

func TestPruneArchives_MissingDirIsNoOp(t *testing.T) {
	removed, err := pruneArchives(filepath.Join(t.TempDir(), "absent"), time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
