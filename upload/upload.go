// Package upload appends generated notes to each class's notes documents in
// Google Docs.
package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/docsmd"
	"github.com/smartlawnotes/lawnotes/notes"
	"github.com/smartlawnotes/lawnotes/workspace"
)

// separator goes between existing content and appended notes.
const separator = "\n\n"

// Documents edits Google Docs.
type Documents interface {
	EndIndex(ctx context.Context, documentID string) (int, error)
	BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error
}

// Finder locates a class's notes document in Drive.
type Finder interface {
	FindNotesDocument(ctx context.Context, classesFolderID, className, suffix string) (*drive.File, error)
}

// DocumentSuffix is how the target document's name ends for kind.
func DocumentSuffix(kind notes.Kind) string {
	if kind == notes.Reading {
		return "Reading Notes"
	}
	return "Lecture Notes"
}

// Uploader appends markdown notes to Google Docs.
type Uploader struct {
	docs            Documents
	finder          Finder
	classesFolderID string
	converter       *docsmd.Converter
	logger          *zap.Logger
}

// New returns an Uploader that looks for notes documents in per-class
// folders under classesFolderID.
func New(d Documents, f Finder, classesFolderID string, converter *docsmd.Converter, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if converter == nil {
		converter = docsmd.NewConverter(docsmd.WithLogger(logger))
	}
	return &Uploader{
		docs:            d,
		finder:          f,
		classesFolderID: classesFolderID,
		converter:       converter,
		logger:          logger,
	}
}

// AppendMarkdown converts markdown and appends it at the end of the document.
// A non-empty document first gets a blank-line separator in its own batch.
// It returns false for blank markdown or when no requests were produced.
func (u *Uploader) AppendMarkdown(ctx context.Context, documentID, markdown string) (bool, error) {
	if strings.TrimSpace(markdown) == "" {
		u.logger.Warn("nothing to append", zap.String("document", documentID))
		return false, nil
	}
	end, err := u.docs.EndIndex(ctx, documentID)
	if err != nil {
		return false, err
	}
	u.logger.Debug("document end index", zap.String("document", documentID), zap.Int("index", end))

	start := end
	if end > 1 {
		start += docsmd.TextLength(separator)
	}
	requests := u.converter.Convert(ctx, markdown, start)
	if len(requests) == 0 {
		u.logger.Warn("no requests generated from markdown", zap.String("document", documentID))
		return false, nil
	}

	if end > 1 {
		sep := []*docs.Request{docsmd.InsertTextRequest(end, separator)}
		if err := u.docs.BatchUpdate(ctx, documentID, sep); err != nil {
			return false, errors.Wrap(err, "insert separator")
		}
	}
	if err := u.docs.BatchUpdate(ctx, documentID, requests); err != nil {
		return false, err
	}
	return true, nil
}

// UploadFile appends one notes file to the class's document of the given
// kind, titling it with the file's name.
func (u *Uploader) UploadFile(ctx context.Context, path, className string, kind notes.Kind) error {
	doc, err := u.finder.FindNotesDocument(ctx, u.classesFolderID, className, DocumentSuffix(kind))
	if err != nil {
		return err
	}
	if doc == nil {
		return errors.Errorf("no document ending with %q for %s", DocumentSuffix(kind), className)
	}
	return u.upload(ctx, path, doc)
}

func (u *Uploader) upload(ctx context.Context, path string, doc *drive.File) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	markdown, ok := PrependTitle(string(data), stem)
	if !ok {
		u.logger.Warn("no level-3 heading to title", zap.String("file", filepath.Base(path)))
	}

	appended, err := u.AppendMarkdown(ctx, doc.Id, markdown)
	if err != nil {
		return errors.Wrapf(err, "upload %s", filepath.Base(path))
	}
	if !appended {
		return errors.Errorf("%s produced no content", filepath.Base(path))
	}
	u.logger.Info("uploaded", zap.String("file", filepath.Base(path)), zap.String("document", doc.Name))
	return nil
}

// Result counts uploads per notes kind.
type Result struct {
	Lecture workspace.Tally
	Reading workspace.Tally
}

// Total folds both kinds together.
func (r Result) Total() workspace.Tally {
	t := r.Lecture
	t.Add(r.Reading)
	return t
}

// UploadClass uploads every notes file in the class's lecture and reading
// output folders. A kind whose document cannot be found fails all its files.
func (u *Uploader) UploadClass(ctx context.Context, paths config.ClassPaths) (Result, error) {
	var res Result
	for _, k := range []struct {
		kind  notes.Kind
		dir   string
		tally *workspace.Tally
	}{
		{notes.Lecture, paths.LectureOutput, &res.Lecture},
		{notes.Reading, paths.ReadingOutput, &res.Reading},
	} {
		files, err := workspace.NotesFiles(k.dir)
		if err != nil {
			return res, err
		}
		if len(files) == 0 {
			continue
		}
		u.logger.Info("found notes files", zap.String("class", paths.ClassName), zap.Stringer("kind", k.kind), zap.Int("count", len(files)))

		doc, findErr := u.finder.FindNotesDocument(ctx, u.classesFolderID, paths.ClassName, DocumentSuffix(k.kind))
		if findErr == nil && doc == nil {
			findErr = errors.Errorf("no document ending with %q for %s", DocumentSuffix(k.kind), paths.ClassName)
		}
		if findErr != nil {
			u.logger.Error("notes document unavailable", zap.String("class", paths.ClassName), zap.Error(findErr))
		}
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if findErr != nil {
				k.tally.Record(errors.Wrap(findErr, filepath.Base(f)))
				continue
			}
			upErr := u.upload(ctx, f, doc)
			if upErr != nil {
				u.logger.Error("upload failed", zap.String("file", filepath.Base(f)), zap.Error(upErr))
			}
			k.tally.Record(upErr)
		}
	}
	return res, nil
}
