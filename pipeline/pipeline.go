// Package pipeline runs the per-class steps in order and reports a summary for
// each.
package pipeline

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/workspace"
)

// Step names, in pipeline order.
const (
	Download     = "Download"
	Transcribe   = "Transcription"
	LectureNotes = "Lecture Notes"
	ReadingNotes = "Reading Notes"
	Upload       = "Upload"
)

// ClassFunc runs one step for one class.
type ClassFunc func(ctx context.Context, paths config.ClassPaths) (workspace.Tally, error)

// Step is a named ClassFunc.
type Step struct {
	Name string
	Run  ClassFunc
}

// ClassResult is the outcome of one step for one class. Err is set when the
// step failed for the class as a whole.
type ClassResult struct {
	Class string
	Tally workspace.Tally
	Err   error
}

// Summary is the outcome of one step across all classes.
type Summary struct {
	Step    string
	Classes []ClassResult
	Total   workspace.Tally
	// Err joins the class-level failures.
	Err error
}

func (s Summary) String() string {
	return fmt.Sprintf("%s Summary: %d successful, %d failed", s.Step, s.Total.Successful, s.Total.Failed)
}

// Runner runs steps over the configured classes.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Classes returns the folder layout of every configured class, creating any
// missing folders. A class folder that does not exist is an error.
func (r *Runner) Classes() ([]config.ClassPaths, error) {
	if len(r.cfg.Classes) == 0 {
		return nil, errors.Errorf("no classes configured; set classes in the config file or %s", config.EnvClasses)
	}
	out := make([]config.ClassPaths, 0, len(r.cfg.Classes))
	for _, dir := range r.cfg.Classes {
		paths := r.cfg.PathsFor(dir)
		if err := workspace.Scaffold(paths); err != nil {
			return nil, err
		}
		r.logger.Debug("class folders ready", zap.String("class", paths.ClassName), zap.String("root", paths.Root))
		out = append(out, paths)
	}
	return out, nil
}

// Run runs steps in order over every class. Failures inside a step are
// reported in its Summary; only setup failures and cancellation end the run
// early.
func (r *Runner) Run(ctx context.Context, steps ...Step) ([]Summary, error) {
	classes, err := r.Classes()
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		summaries = append(summaries, r.RunStep(ctx, step, classes))
	}
	return summaries, nil
}

// RunStep runs step for each class. A class that fails is logged and the
// remaining classes still run.
func (r *Runner) RunStep(ctx context.Context, step Step, classes []config.ClassPaths) Summary {
	logger := r.logger.With(zap.String("step", step.Name))
	logger.Info("step started", zap.Int("classes", len(classes)))

	sum := Summary{Step: step.Name}
	for _, paths := range classes {
		if ctx.Err() != nil {
			break
		}
		tally, err := step.Run(ctx, paths)
		res := ClassResult{Class: paths.ClassName, Tally: tally, Err: err}
		sum.Classes = append(sum.Classes, res)
		sum.Total.Add(tally)

		fields := []zap.Field{
			zap.String("class", paths.ClassName),
			zap.Int("successful", tally.Successful),
			zap.Int("failed", tally.Failed),
		}
		if err != nil {
			sum.Err = multierr.Append(sum.Err, errors.Wrap(err, paths.ClassName))
			logger.Error("class failed", append(fields, zap.Error(err))...)
			continue
		}
		logger.Info("class done", fields...)
	}
	logger.Info(sum.String())
	return sum
}
