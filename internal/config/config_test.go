package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagedb.yaml")

	yaml := `
storage:
  workdir: /var/lib/pagedb
  page_size: 8192
buffer_pool:
  num_bufs: 64
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pagedb", cfg.Storage.Workdir)
	require.Equal(t, 64, cfg.BufferPool.NumBufs)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefault_HasSaneValues(t *testing.T) {
	cfg := Default()
	require.Positive(t, cfg.BufferPool.NumBufs)
	require.Positive(t, cfg.Storage.PageSize)
	require.NotEmpty(t, cfg.Log.Level)
}
