package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipl-win-predictor/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, dir, version string) string {
	t.Helper()
	path := filepath.Join(dir, version+".yaml")
	body := "version: " + version + "\nintercept: 0.1\nnumeric:\n  runs_left: -0.02\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func ctl(t *testing.T, data string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"-data", data}, args...), &out)
	return out.String(), err
}

func TestImportActivateRollback(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "registry")

	out, err := ctl(t, data, "import", "-accuracy", "0.81", "-activate", writeModel(t, dir, "v1"))
	require.NoError(t, err)
	assert.Contains(t, out, "imported v1")
	assert.Contains(t, out, "activated v1")

	_, err = ctl(t, data, "import", "-activate", writeModel(t, dir, "v2"))
	require.NoError(t, err)

	out, err = ctl(t, data, "active")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", out)

	out, err = ctl(t, data, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "v2"))
	assert.True(t, strings.HasSuffix(lines[1], "*"))
	assert.Contains(t, lines[2], "0.810")

	out, err = ctl(t, data, "rollback")
	require.NoError(t, err)
	assert.Equal(t, "rolled back to v1\n", out)

	_, err = ctl(t, data, "rollback")
	assert.ErrorIs(t, err, storage.ErrNoRollback)
}

func TestImportRejectsInvalidModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intercept: 1\nnumeric:\n  overs: 0.3\n"), 0o600))

	_, err := ctl(t, dir, "import", path)
	assert.Error(t, err)

	_, err = ctl(t, dir, "active")
	assert.ErrorIs(t, err, storage.ErrNoActiveModel)
}

func TestActivateUnknownVersion(t *testing.T) {
	_, err := ctl(t, t.TempDir(), "activate", "missing")
	assert.ErrorIs(t, err, storage.ErrModelNotFound)
}

func TestUnknownCommand(t *testing.T) {
	_, err := ctl(t, t.TempDir(), "purge")
	assert.Error(t, err)

	_, err = ctl(t, t.TempDir())
	assert.Error(t, err)
}
