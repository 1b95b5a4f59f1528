package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "efc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesAllFields(t *testing.T) {
	path := writeTemp(t, `
output_dir: build/out
backend: sml
trace:
  lifted: true
  ml: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build/out", cfg.OutputDir)
	assert.Equal(t, BackendSML, cfg.Backend)
	assert.True(t, cfg.Trace.Lifted)
	assert.False(t, cfg.Trace.ML)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := writeTemp(t, `trace:
  lifted: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, BackendSML, cfg.Backend)
}

func TestLoadRejectsAnUnknownBackend(t *testing.T) {
	path := writeTemp(t, `backend: llvm`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestLoadRejectsAnEmptyOutputDir(t *testing.T) {
	path := writeTemp(t, `output_dir: ""`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_dir")
}

func TestLoadFailsOnAMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultIsAlreadyValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
