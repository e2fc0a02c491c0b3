package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runList(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		listJSON = false
		notesDir = ""
		configPath = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"list"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("B"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644))

	assert.Equal(t, "a.md\nb.md\n", runList(t, "--dir", dir))
	assert.JSONEq(t, `{"files":["a.md","b.md"]}`, runList(t, "--dir", dir, "--json"))
}

func TestListCommand_MissingDir(t *testing.T) {
	t.Cleanup(func() { notesDir = "" })

	rootCmd.SetArgs([]string{"list", "--dir", filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, rootCmd.Execute())
}
