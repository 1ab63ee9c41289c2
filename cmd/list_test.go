package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListCmd_EmptyTree(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "")

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--root", t.TempDir()})

	require.NoError(t, cmd.Execute())
}

func TestListCmd_DiscoversDocuments(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "skip.html"), []byte("<html></html>"), 0o644))

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"list", "--root", root})

	require.NoError(t, cmd.Execute())
}
