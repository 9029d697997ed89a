package cmd

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/docsmd"
	"github.com/smartlawnotes/lawnotes/gdrive"
	"github.com/smartlawnotes/lawnotes/notes"
	"github.com/smartlawnotes/lawnotes/pipeline"
	"github.com/smartlawnotes/lawnotes/reading"
	"github.com/smartlawnotes/lawnotes/transcript"
	"github.com/smartlawnotes/lawnotes/upload"
	"github.com/smartlawnotes/lawnotes/workspace"
)

// app carries the loaded config and logger into every command and builds the
// pipeline steps from them.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) converter() *docsmd.Converter {
	opts := []docsmd.Option{docsmd.WithLogger(a.logger)}
	if a.cfg.Prettier {
		opts = append(opts, docsmd.WithFormatter(docsmd.Prettier{Timeout: a.cfg.PrettierTimeout}))
	}
	return docsmd.NewConverter(opts...)
}

func (a *app) reader() *reading.Extractor {
	return reading.New(a.cfg.MaxFileSizeBytes, a.logger)
}

func (a *app) auth() *gdrive.Auth {
	return &gdrive.Auth{
		CredentialsFile: a.cfg.CredentialsFile,
		TokenFile:       a.cfg.TokenFile,
		Logger:          a.logger,
	}
}

func (a *app) clientOption(ctx context.Context) (option.ClientOption, error) {
	client, err := a.auth().Client(ctx)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(client), nil
}

func (a *app) downloadStep(ctx context.Context) (pipeline.Step, error) {
	if a.cfg.DriveParentFolderID == "" {
		return pipeline.Step{}, errors.Errorf("drive_parent_folder_id is not set (or %s)", config.EnvDriveParentID)
	}
	opt, err := a.clientOption(ctx)
	if err != nil {
		return pipeline.Step{}, err
	}
	drv, err := gdrive.NewDrive(ctx, opt)
	if err != nil {
		return pipeline.Step{}, err
	}
	d := &gdrive.Downloader{Files: drv, ParentID: a.cfg.DriveParentFolderID, Logger: a.logger}
	return pipeline.Step{Name: pipeline.Download, Run: d.DownloadClass}, nil
}

func (a *app) transcribeStep() pipeline.Step {
	pool := &transcript.Pool{
		Engine:       transcript.WhisperCLI{},
		ModelName:    a.cfg.WhisperModel,
		Workers:      a.cfg.AudioWorkers,
		Preprocessor: &transcript.Preprocessor{Logger: a.logger},
		Logger:       a.logger,
	}
	return pipeline.Step{Name: pipeline.Transcribe, Run: pool.TranscribeClass}
}

// notesSteps returns the lecture and reading steps and a func releasing the
// Gemini client.
func (a *app) notesSteps(ctx context.Context) ([]pipeline.Step, func(), error) {
	gemini, err := notes.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel, a.cfg.MaxOutputTokens)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := gemini.Close(); err != nil {
			a.logger.Debug("close gemini client", zap.Error(err))
		}
	}

	gen := &notes.Retry{Generator: gemini, Logger: a.logger}
	proc := notes.NewProcessor(a.cfg, gen, a.reader(), a.logger)
	kindStep := func(name string, kind notes.Kind) pipeline.Step {
		return pipeline.Step{Name: name, Run: func(ctx context.Context, paths config.ClassPaths) (workspace.Tally, error) {
			return proc.ProcessClass(ctx, paths, kind)
		}}
	}
	steps := []pipeline.Step{
		kindStep(pipeline.LectureNotes, notes.Lecture),
		kindStep(pipeline.ReadingNotes, notes.Reading),
	}
	return steps, release, nil
}

func (a *app) uploadStep(ctx context.Context) (pipeline.Step, error) {
	if a.cfg.DriveClassesFolderID == "" {
		return pipeline.Step{}, errors.Errorf("drive_classes_folder_id is not set (or %s)", config.EnvDriveClassesID)
	}
	opt, err := a.clientOption(ctx)
	if err != nil {
		return pipeline.Step{}, err
	}
	drv, err := gdrive.NewDrive(ctx, opt)
	if err != nil {
		return pipeline.Step{}, err
	}
	dcs, err := gdrive.NewDocs(ctx, opt)
	if err != nil {
		return pipeline.Step{}, err
	}
	u := upload.New(dcs, drv, a.cfg.DriveClassesFolderID, a.converter(), a.logger)
	return pipeline.Step{Name: pipeline.Upload, Run: func(ctx context.Context, paths config.ClassPaths) (workspace.Tally, error) {
		res, err := u.UploadClass(ctx, paths)
		return res.Total(), err
	}}, nil
}
