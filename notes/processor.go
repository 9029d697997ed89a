package notes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/workspace"
)

// Kind selects lecture transcripts or reading material.
type Kind int

const (
	Lecture Kind = iota
	Reading
)

func (k Kind) String() string {
	if k == Reading {
		return "reading"
	}
	return "lecture transcript"
}

// Extractor pulls plain text out of a reading file.
type Extractor interface {
	CanExtract(path string) bool
	Extract(ctx context.Context, path string) (string, error)
}

// Processor writes notes for every pending file of a class.
type Processor struct {
	generator Generator
	extractor Extractor
	cfg       *config.Config
	logger    *zap.Logger
}

// NewProcessor builds a Processor. Without an extractor only .txt readings
// are processed.
func NewProcessor(cfg *config.Config, gen Generator, ext Extractor, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{generator: gen, extractor: ext, cfg: cfg, logger: logger}
}

type job struct {
	input     string
	output    string
	processed string
}

// ProcessClass generates notes for the class's pending lecture transcripts or
// readings, up to cfg.LLMWorkers at a time. Each result is written to the
// output folder as <name>.md and copied to the new-outputs folder; the input
// then moves to the processed folder. A missing prompt fails every file.
func (p *Processor) ProcessClass(ctx context.Context, paths config.ClassPaths, kind Kind) (workspace.Tally, error) {
	var (
		files      []string
		err        error
		promptFile string
		j          job
	)
	switch kind {
	case Reading:
		files, err = workspace.ReadingFiles(paths)
		files = p.readable(files)
		promptFile = p.cfg.ReadingPromptFile
		j = job{output: paths.ReadingOutput, processed: paths.ReadingProcessed}
	default:
		files, err = workspace.TranscriptFiles(paths)
		promptFile = p.cfg.LecturePromptFile
		j = job{output: paths.LectureOutput, processed: paths.LectureProcessedTxt}
	}
	if err != nil {
		return workspace.Tally{}, err
	}
	if len(files) == 0 {
		p.logger.Info("no files found", zap.String("class", paths.ClassName), zap.Stringer("kind", kind))
		return workspace.Tally{}, nil
	}
	p.logger.Info("found files", zap.String("class", paths.ClassName), zap.Stringer("kind", kind), zap.Int("count", len(files)))

	prompt, err := LoadPrompt(p.cfg.PromptDir, promptFile, paths.ClassName)
	if err != nil {
		return workspace.Tally{Failed: len(files), Err: err}, err
	}

	var (
		mu    sync.Mutex
		tally workspace.Tally
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.LLMWorkers, 1))
	for _, f := range files {
		j := j
		j.input = f
		g.Go(func() error {
			err := p.process(ctx, kind, prompt, j)
			mu.Lock()
			tally.Record(err)
			n := tally.Successful + tally.Failed
			mu.Unlock()
			if err != nil {
				p.logger.Error("notes failed", zap.Int("done", n), zap.Int("total", len(files)), zap.String("file", filepath.Base(f)), zap.Error(err))
			} else {
				p.logger.Info("notes written", zap.Int("done", n), zap.Int("total", len(files)), zap.String("file", filepath.Base(f)))
			}
			// Per-file failures are tallied, never returned, so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()
	return tally, nil
}

func (p *Processor) process(ctx context.Context, kind Kind, prompt string, j job) error {
	content, err := p.read(ctx, kind, j.input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return errors.Errorf("%s is empty", filepath.Base(j.input))
	}

	notes, err := p.generator.Generate(ctx, prompt, content)
	if err != nil {
		return errors.Wrapf(err, "generate notes for %s", filepath.Base(j.input))
	}

	stem := strings.TrimSuffix(filepath.Base(j.input), filepath.Ext(j.input))
	out := filepath.Join(j.output, stem+".md")
	if err := os.WriteFile(out, []byte(notes), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", filepath.Base(out))
	}

	if p.cfg.NewOutputsDir != "" {
		if _, err := workspace.CopyToOutputs(out, p.cfg.NewOutputsDir); err != nil {
			p.logger.Warn("copy to new outputs failed", zap.String("file", filepath.Base(out)), zap.Error(err))
		}
	}
	if _, err := workspace.MoveToProcessed(j.input, j.processed); err != nil {
		p.logger.Warn("move to processed failed", zap.String("file", filepath.Base(j.input)), zap.Error(err))
	}
	return nil
}

// readable drops the readings that cannot be turned into text.
func (p *Processor) readable(files []string) []string {
	var out []string
	for _, f := range files {
		ok := strings.EqualFold(filepath.Ext(f), ".txt")
		if p.extractor != nil {
			ok = p.extractor.CanExtract(f)
		}
		if !ok {
			p.logger.Debug("skipping unsupported reading", zap.String("file", filepath.Base(f)))
			continue
		}
		out = append(out, f)
	}
	return out
}

func (p *Processor) read(ctx context.Context, kind Kind, path string) (string, error) {
	if kind == Reading && p.extractor != nil {
		text, err := p.extractor.Extract(ctx, path)
		if err != nil {
			return "", errors.Wrapf(err, "extract %s", filepath.Base(path))
		}
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	return string(data), nil
}
