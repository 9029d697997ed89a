package notes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture.md"),
		[]byte("You are a tutor for {class_name}. Cover every {class_name} case."), 0o644))

	got, err := LoadPrompt(dir, "lecture.md", "Contracts")
	require.NoError(t, err)
	assert.Equal(t, "You are a tutor for Contracts. Cover every Contracts case.", got)
}

func TestLoadPromptMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadPrompt(dir, "reading.md", "Torts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file not found")
	assert.Contains(t, err.Error(), filepath.Join(dir, "reading.md"))
}
