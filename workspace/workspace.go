// Package workspace manages the per-class folder tree on local disk.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/smartlawnotes/lawnotes/config"
)

// now is swapped by tests that need a fixed collision suffix.
var now = time.Now

// Scaffold creates every folder a class needs. The class folder itself must
// already exist.
func Scaffold(paths config.ClassPaths) error {
	info, err := os.Stat(paths.Root)
	if err != nil {
		return errors.Wrapf(err, "class folder does not exist: %s", paths.Root)
	}
	if !info.IsDir() {
		return errors.Errorf("class folder is not a directory: %s", paths.Root)
	}
	for _, dir := range paths.All() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create folder %s", dir)
		}
	}
	return nil
}

// AudioFiles lists the .m4a recordings waiting in the lecture input folder.
func AudioFiles(paths config.ClassPaths) ([]string, error) {
	return listExt(paths.LectureInput, ".m4a")
}

// TranscriptFiles lists the .txt transcripts waiting in the lecture input folder.
func TranscriptFiles(paths config.ClassPaths) ([]string, error) {
	return listExt(paths.LectureInput, ".txt")
}

// ReadingFiles lists every regular file in the reading input folder.
func ReadingFiles(paths config.ClassPaths) ([]string, error) {
	return listExt(paths.ReadingInput, "")
}

// NotesFiles lists the generated .md files in an output folder.
func NotesFiles(dir string) ([]string, error) {
	return listExt(dir, ".md")
}

// listExt returns the sorted regular files in dir whose extension matches ext
// case-insensitively. An empty ext matches every file; a missing dir is empty.
func listExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Destination returns dir/base, or dir/stem_YYYYMMDD_HHMMSS.ext when that
// name is already taken.
func Destination(dir, base string) string {
	dest := filepath.Join(dir, base)
	if _, err := os.Stat(dest); err != nil {
		return dest
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_"+now().Format("20060102_150405")+ext)
}

// MoveToProcessed moves file into dir and returns its new path.
func MoveToProcessed(file, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	dest := Destination(dir, filepath.Base(file))
	if err := os.Rename(file, dest); err == nil {
		return dest, nil
	}
	// Rename fails across devices; fall back to copy and remove.
	if err := copy.Copy(file, dest, copy.Options{PreserveTimes: true}); err != nil {
		return "", errors.Wrapf(err, "move %s", filepath.Base(file))
	}
	if err := os.Remove(file); err != nil {
		return "", errors.Wrapf(err, "remove %s after copy", filepath.Base(file))
	}
	return dest, nil
}

// CopyToOutputs copies file into dir, keeping its modification time.
func CopyToOutputs(file, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	dest := Destination(dir, filepath.Base(file))
	if err := copy.Copy(file, dest, copy.Options{PreserveTimes: true}); err != nil {
		return "", errors.Wrapf(err, "copy %s to %s", filepath.Base(file), dir)
	}
	return dest, nil
}

// Tally counts the files a step handled for one class.
type Tally struct {
	Successful int
	Failed     int
	// Err joins the per-file failures.
	Err error
}

// Record counts one file, collecting err when it failed.
func (t *Tally) Record(err error) {
	if err != nil {
		t.Failed++
		t.Err = multierr.Append(t.Err, err)
		return
	}
	t.Successful++
}

// Add folds other into t.
func (t *Tally) Add(other Tally) {
	t.Successful += other.Successful
	t.Failed += other.Failed
	t.Err = multierr.Append(t.Err, other.Err)
}
