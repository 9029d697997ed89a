package transcript

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Model recognizes speech in one audio file.
type Model interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// Engine loads a named speech model. Loading may be expensive, so callers
// load once per worker and reuse the Model.
type Engine interface {
	Load(ctx context.Context, name string) (Model, error)
}

// WhisperCLI runs the openai-whisper command line tool.
type WhisperCLI struct {
	// Binary defaults to "whisper".
	Binary string
	// Language skips language detection when set, e.g. "en".
	Language string
}

func (w WhisperCLI) Load(_ context.Context, name string) (Model, error) {
	bin := w.Binary
	if bin == "" {
		bin = "whisper"
	}
	path, err := lookPath(bin)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not installed or not on PATH", bin)
	}
	return &whisperModel{bin: path, name: name, language: w.Language}, nil
}

type whisperModel struct {
	bin      string
	name     string
	language string
}

type whisperOutput struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

func (m *whisperModel) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	outDir, err := os.MkdirTemp("", "lawnotes-whisper-*")
	if err != nil {
		return nil, errors.Wrap(err, "create whisper output dir")
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	args := []string{audioPath,
		"--model", m.name,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
		"--fp16", "False",
	}
	if m.language != "" {
		args = append(args, "--language", m.language)
	}
	if _, stderr, err := runCommand(ctx, m.bin, args...); err != nil {
		return nil, errors.Wrapf(err, "whisper %s: %s", filepath.Base(audioPath), lastLine(stderr))
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, stem+".json"))
	if err != nil {
		return nil, errors.Wrap(err, "read whisper output")
	}
	return parseWhisperJSON(data)
}

// parseWhisperJSON reads the segments of a whisper JSON result. A result with
// text but no segments becomes a single segment.
func parseWhisperJSON(data []byte) ([]Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "decode whisper output")
	}
	if len(out.Segments) == 0 && strings.TrimSpace(out.Text) != "" {
		return []Segment{{Text: out.Text}}, nil
	}
	return out.Segments, nil
}
