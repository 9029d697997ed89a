package gdrive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/workspace"
)

type fakeFiles struct {
	folders  map[string]string // parent/name -> id
	audio    []*drive.File
	failDown map[string]bool
	failMove bool
	moved    []string
	created  []string
}

func (f *fakeFiles) FindFolder(_ context.Context, parentID, name string) (string, error) {
	return f.folders[parentID+"/"+name], nil
}

func (f *fakeFiles) EnsureFolder(ctx context.Context, parentID, name string) (string, error) {
	if id, _ := f.FindFolder(ctx, parentID, name); id != "" {
		return id, nil
	}
	f.created = append(f.created, name)
	return "new-" + name, nil
}

func (f *fakeFiles) ListAudio(context.Context, string) ([]*drive.File, error) {
	return f.audio, nil
}

func (f *fakeFiles) Download(_ context.Context, fileID, dest string) error {
	if f.failDown[fileID] {
		return errors.New("connection reset")
	}
	return os.WriteFile(dest, []byte(fileID), 0o644)
}

func (f *fakeFiles) Move(_ context.Context, fileID, folderID string) error {
	if f.failMove {
		return errors.New("insufficient permissions")
	}
	f.moved = append(f.moved, fileID+"->"+folderID)
	return nil
}

func classPaths(t *testing.T) config.ClassPaths {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Torts")
	require.NoError(t, os.Mkdir(root, 0o755))
	paths := config.Default().PathsFor(root)
	require.NoError(t, workspace.Scaffold(paths))
	return paths
}

func TestDownloadClass(t *testing.T) {
	paths := classPaths(t)
	files := &fakeFiles{
		folders: map[string]string{"parent/Torts": "torts"},
		audio: []*drive.File{
			{Id: "a1", Name: "Sept 3.m4a"},
			{Id: "a2", Name: "Sept 5.m4a"},
		},
		failDown: map[string]bool{"a2": true},
	}
	d := &Downloader{Files: files, ParentID: "parent"}

	tally, err := d.DownloadClass(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Successful)
	assert.Equal(t, 1, tally.Failed)
	assert.ErrorContains(t, tally.Err, "Sept 5.m4a")

	assert.FileExists(t, filepath.Join(paths.LectureInput, "Sept 3.m4a"))
	assert.Equal(t, []string{"Processed"}, files.created)
	assert.Equal(t, []string{"a1->new-Processed"}, files.moved)
}

func TestDownloadClassMoveFailureStillCounts(t *testing.T) {
	files := &fakeFiles{
		folders:  map[string]string{"parent/Torts": "torts", "torts/Processed": "done"},
		audio:    []*drive.File{{Id: "a1", Name: "x.m4a"}},
		failMove: true,
	}
	tally, err := (&Downloader{Files: files, ParentID: "parent"}).DownloadClass(context.Background(), classPaths(t))
	require.NoError(t, err)
	assert.Equal(t, workspace.Tally{Successful: 1}, tally)
	assert.Empty(t, files.created)
}

func TestDownloadClassNoFolder(t *testing.T) {
	files := &fakeFiles{audio: []*drive.File{{Id: "a1", Name: "x.m4a"}}}
	tally, err := (&Downloader{Files: files, ParentID: "parent"}).DownloadClass(context.Background(), classPaths(t))
	require.NoError(t, err)
	assert.Equal(t, workspace.Tally{}, tally)
}
