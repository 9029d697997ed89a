package docsmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrettier installs a shell script as the prettier binary for the test.
func fakePrettier(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "prettier")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))

	orig := lookPath
	lookPath = func(string) (string, error) { return path, nil }
	t.Cleanup(func() { lookPath = orig })
}

func TestPrettierMissing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = orig })

	_, err := Prettier{}.Format(context.Background(), "# x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "npm install -g prettier")
}

func TestPrettierFormats(t *testing.T) {
	fakePrettier(t, `sed 's/^\* /- /'`)

	out, err := Prettier{}.Format(context.Background(), "* item\n")
	require.NoError(t, err)
	assert.Equal(t, "- item\n", out)
}

func TestPrettierNonZeroExit(t *testing.T) {
	fakePrettier(t, "echo broken >&2; exit 2")

	_, err := Prettier{}.Format(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestPrettierTimeout(t *testing.T) {
	fakePrettier(t, "exec sleep 5")

	_, err := Prettier{Timeout: 50 * time.Millisecond}.Format(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestConverterWithPrettierFallsBack(t *testing.T) {
	fakePrettier(t, "exit 1")

	got := NewConverter(WithFormatter(Prettier{})).Convert(context.Background(), "text", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "text\n", got[0].InsertText.Text)
}

func TestPrettierBinary(t *testing.T) {
	want := "prettier"
	if runtime.GOOS == "windows" {
		want = "prettier.cmd"
	}
	assert.Equal(t, want, prettierBinary())
}
