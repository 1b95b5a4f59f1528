package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabled/effectc/internal/config"
)

func TestRunDumpWritesTheEmittedFileUnderOutputDir(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runDump(cfg, false, false, &out))

	dest := filepath.Join(cfg.OutputDir, "demo_main.sml")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fun main")
	assert.Contains(t, string(data), "fun describe")
	assert.Contains(t, string(data), "datatype pair = Pair of int * string")
	assert.Contains(t, string(data), `(Pair (tmp, "demo"))`)
	assert.Contains(t, string(data), "(Pair_field1 p)")
	assert.Contains(t, string(data), "fun printInt x = print (Int.toString x)")
	assert.Contains(t, out.String(), "wrote")
}

func TestRunDumpPrintsIRAndMLWhenAsked(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runDump(cfg, true, true, &out))
	s := out.String()
	assert.Contains(t, s, "lifted IR")
	assert.Contains(t, s, "def main")
	assert.Contains(t, s, "target ML")
}

func TestRunDumpHonorsTraceConfigWithoutFlags(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Trace.ML = true
	var out bytes.Buffer

	require.NoError(t, runDump(cfg, false, false, &out))
	assert.Contains(t, out.String(), "target ML")
}
