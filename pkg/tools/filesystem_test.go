package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	ws := t.TempDir()
	write := NewWriteFileTool(ws, true)
	read := NewReadFileTool(ws, true)

	result := write.Execute(context.Background(), map[string]any{
		"path":    "nested/note.txt",
		"content": "remember the milk",
	})
	require.False(t, result.IsError, result.ForLLM)

	result = read.Execute(context.Background(), map[string]any{"path": "nested/note.txt"})
	require.False(t, result.IsError, result.ForLLM)
	assert.Equal(t, "remember the milk", result.ForLLM)
}

func TestWriteFileOutsideWorkspaceRejected(t *testing.T) {
	ws := t.TempDir()
	write := NewWriteFileTool(ws, true)

	result := write.Execute(context.Background(), map[string]any{
		"path":    "../escape.txt",
		"content": "x",
	})
	assert.True(t, result.IsError)
}

func TestReadFileMissing(t *testing.T) {
	read := NewReadFileTool(t.TempDir(), true)

	result := read.Execute(context.Background(), map[string]any{"path": "nope.txt"})
	assert.True(t, result.IsError)
}

func TestListDir(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(ws, "sub"), 0o755))

	list := NewListDirTool(ws, true)
	result := list.Execute(context.Background(), map[string]any{})
	require.False(t, result.IsError)
	assert.Contains(t, result.ForLLM, "a.txt")
	assert.Contains(t, result.ForLLM, "sub/")
}
