package transcript

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

// Pool transcribes a class's recordings on a fixed number of workers. Each
// worker loads its own Model once and keeps it for every file it handles.
type Pool struct {
	Engine       Engine
	ModelName    string
	Workers      int
	Preprocessor *Preprocessor
	Paragraphs   ParagraphOptions
	Logger       *zap.Logger
}

// worker is the state owned by one pool goroutine.
type worker struct {
	id    int
	model Model
	pool  *Pool
}

func (p *Pool) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// TranscribeClass transcribes every .m4a file in the class's lecture input
// folder. Each transcript is written next to its recording as <name>.txt and
// the recording is moved to the processed audio folder. A failing file does
// not stop the others; a model that cannot be loaded fails the whole class.
func (p *Pool) TranscribeClass(ctx context.Context, paths config.ClassPaths) (workspace.Tally, error) {
	files, err := workspace.AudioFiles(paths)
	if err != nil {
		return workspace.Tally{}, err
	}
	if len(files) == 0 {
		p.logger().Info("no audio files found", zap.String("class", paths.ClassName))
		return workspace.Tally{}, nil
	}
	p.logger().Info("found audio files", zap.String("class", paths.ClassName), zap.Int("count", len(files)))

	var (
		mu     sync.Mutex
		result workspace.Tally
		done   int
	)
	jobs := make(chan string)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < min(max(p.Workers, 1), len(files)); i++ {
		g.Go(func() error {
			model, err := p.Engine.Load(ctx, p.ModelName)
			if err != nil {
				return errors.Wrapf(err, "load model %q", p.ModelName)
			}
			w := &worker{id: i, model: model, pool: p}
			for file := range jobs {
				err := w.transcribe(ctx, file, paths)
				mu.Lock()
				result.Record(err)
				done++
				progress := done
				mu.Unlock()
				w.report(progress, len(files), file, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (w *worker) transcribe(ctx context.Context, audioPath string, paths config.ClassPaths) error {
	source := audioPath
	if w.pool.Preprocessor != nil {
		prepared, cleanup, err := w.pool.Preprocessor.Prepare(ctx, audioPath)
		if err != nil {
			return errors.Wrapf(err, "preprocess %s", filepath.Base(audioPath))
		}
		defer cleanup()
		source = prepared
	}

	segments, err := w.model.Transcribe(ctx, source)
	if err != nil {
		return errors.Wrapf(err, "transcribe %s", filepath.Base(audioPath))
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	out := filepath.Join(paths.LectureInput, stem+".txt")
	text := FormatParagraphs(segments, w.pool.Paragraphs)
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", filepath.Base(out))
	}

	if _, err := workspace.MoveToProcessed(audioPath, paths.LectureProcessedAudio); err != nil {
		// The transcript exists; a stuck recording is only reported.
		w.pool.logger().Warn("failed to move audio to processed", zap.String("file", filepath.Base(audioPath)), zap.Error(err))
	}
	return nil
}

func (w *worker) report(done, total int, file string, err error) {
	fields := []zap.Field{zap.Int("worker", w.id), zap.Int("done", done), zap.Int("total", total), zap.String("file", filepath.Base(file))}
	if err != nil {
		w.pool.logger().Error("transcription failed", append(fields, zap.Error(err))...)
		return
	}
	w.pool.logger().Info("transcribed", fields...)
}
