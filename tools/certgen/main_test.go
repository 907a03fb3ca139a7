package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/certgen"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run([]string{"-dir", dir, "-hosts", " localhost , ,10.0.0.2"}))
	assert.FileExists(t, filepath.Join(dir, certgen.CACertFile))
	assert.FileExists(t, filepath.Join(dir, certgen.ServerKeyFile))

	assert.Error(t, run([]string{"-dir", dir, "-hosts", " , "}))
	assert.Error(t, run([]string{"-nope"}))
}
