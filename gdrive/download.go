package gdrive

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/workspace"
)

// ProcessedFolder is the Drive folder downloaded recordings are moved into.
const ProcessedFolder = "Processed"

// Files is the part of Drive the downloader needs.
type Files interface {
	FindFolder(ctx context.Context, parentID, name string) (string, error)
	EnsureFolder(ctx context.Context, parentID, name string) (string, error)
	ListAudio(ctx context.Context, folderID string) ([]*drive.File, error)
	Download(ctx context.Context, fileID, dest string) error
	Move(ctx context.Context, fileID, folderID string) error
}

// Downloader fetches lecture recordings from per-class Drive folders.
type Downloader struct {
	Files Files
	// ParentID is the Drive folder holding one folder per class.
	ParentID string
	Logger   *zap.Logger
}

// DownloadClass downloads every recording in the class's Drive folder into
// its lecture input folder, then moves each downloaded file into the Drive
// "Processed" folder. A failed move is only a warning; the download counts.
func (d *Downloader) DownloadClass(ctx context.Context, paths config.ClassPaths) (workspace.Tally, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("class", paths.ClassName))

	folderID, err := d.Files.FindFolder(ctx, d.ParentID, paths.ClassName)
	if err != nil {
		return workspace.Tally{}, err
	}
	if folderID == "" {
		logger.Warn("no Drive folder for class")
		return workspace.Tally{}, nil
	}

	audio, err := d.Files.ListAudio(ctx, folderID)
	if err != nil {
		return workspace.Tally{}, err
	}
	if len(audio) == 0 {
		logger.Info("no recordings to download")
		return workspace.Tally{}, nil
	}
	logger.Info("found recordings", zap.Int("count", len(audio)))

	processedID, err := d.Files.EnsureFolder(ctx, folderID, ProcessedFolder)
	if err != nil {
		return workspace.Tally{}, err
	}

	var tally workspace.Tally
	for _, f := range audio {
		if err := ctx.Err(); err != nil {
			return tally, err
		}
		dest := workspace.Destination(paths.LectureInput, filepath.Base(f.Name))
		if err := d.Files.Download(ctx, f.Id, dest); err != nil {
			logger.Error("download failed", zap.String("file", f.Name), zap.Error(err))
			tally.Record(errors.Wrap(err, f.Name))
			continue
		}
		logger.Info("downloaded", zap.String("file", f.Name), zap.String("path", dest))

		if err := d.Files.Move(ctx, f.Id, processedID); err != nil {
			logger.Warn("downloaded but failed to move in Drive", zap.String("file", f.Name), zap.Error(err))
		} else {
			logger.Debug("moved to Processed folder in Drive", zap.String("file", f.Name))
		}
		tally.Record(nil)
	}
	return tally, nil
}
