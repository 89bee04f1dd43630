package report

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrescanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	content := []byte("not actually malware")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	want := sha256.Sum256(content)

	got, err := PrescanFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sample.bin", got.File)
	assert.Equal(t, hex.EncodeToString(want[:]), got.SHA256)
	assert.Equal(t, int64(len(content)), got.SizeBytes)
}

func TestPrescanFileMissing(t *testing.T) {
	_, err := PrescanFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestStoreSaveAndLoadSummary(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "reports"))

	type summary struct {
		ID      string `json:"id"`
		Backend string `json:"backend"`
	}

	path, err := store.SaveSummary("run-ab12cd34", summary{ID: "run-ab12cd34", Backend: "kvm"})
	require.NoError(t, err)
	assert.FileExists(t, path)

	raw, err := store.LoadSummary("run-ab12cd34")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"backend": "kvm"`)
}

func TestStoreArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-1700000000.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-1700000001.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agent-run.log"), []byte("noise"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary-run-x.json"), []byte("{}"), 0o644))

	artifacts, err := store.Artifacts()
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	for _, a := range artifacts {
		assert.Contains(t, a.Name, "report-")
	}
}

func TestStoreArtifactsMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))
	artifacts, err := store.Artifacts()
	assert.NoError(t, err)
	assert.Empty(t, artifacts)
}
