package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Audio preprocessing targets speech: 16 kHz mono, 80–7500 Hz, peak at -12 dBFS.
const (
	SampleRate   = 16000
	HighpassHz   = 80
	LowpassHz    = 7500
	TargetPeakDB = -12.0
)

var maxVolumeRe = regexp.MustCompile(`max_volume:\s*(-?[\d.]+|-inf) dB`)

// Preprocessor converts a recording into a cleaned WAV file for recognition.
type Preprocessor struct {
	// TempDir receives the intermediate files. Empty means os.TempDir.
	TempDir string
	Logger  *zap.Logger
}

func (p *Preprocessor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Prepare writes a denoised, band-limited, peak-normalized 16 kHz mono WAV
// copy of audioPath and returns its path with a cleanup func. Without ffmpeg
// on PATH the original file is returned unchanged.
func (p *Preprocessor) Prepare(ctx context.Context, audioPath string) (string, func(), error) {
	noop := func() {}
	if _, err := lookPath("ffmpeg"); err != nil {
		p.logger().Warn("ffmpeg not found, transcribing unprocessed audio", zap.String("file", filepath.Base(audioPath)))
		return audioPath, noop, nil
	}

	tmp, err := os.MkdirTemp(p.TempDir, "lawnotes-audio-*")
	if err != nil {
		return "", noop, errors.Wrap(err, "create temp dir for audio")
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	filtered := filepath.Join(tmp, stem+".filtered.wav")
	chain := fmt.Sprintf("afftdn=nr=12:nt=w,highpass=f=%d:poles=2,lowpass=f=%d:poles=2", HighpassHz, LowpassHz)

	p.logger().Debug("converting audio", zap.String("file", filepath.Base(audioPath)), zap.String("filters", chain))
	if _, stderr, err := runCommand(ctx, "ffmpeg", "-hide_banner", "-nostdin", "-y",
		"-i", audioPath, "-ac", "1", "-ar", strconv.Itoa(SampleRate), "-af", chain, filtered); err != nil {
		cleanup()
		return "", noop, errors.Wrapf(err, "ffmpeg convert %s: %s", filepath.Base(audioPath), lastLine(stderr))
	}

	peak, err := p.peakVolume(ctx, filtered)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	if peak == nil {
		p.logger().Warn("audio has zero amplitude", zap.String("file", filepath.Base(audioPath)))
		return filtered, cleanup, nil
	}

	gain := TargetPeakDB - *peak
	out := filepath.Join(tmp, stem+".wav")
	if _, stderr, err := runCommand(ctx, "ffmpeg", "-hide_banner", "-nostdin", "-y",
		"-i", filtered, "-af", fmt.Sprintf("volume=%.2fdB", gain), out); err != nil {
		cleanup()
		return "", noop, errors.Wrapf(err, "ffmpeg normalize %s: %s", filepath.Base(audioPath), lastLine(stderr))
	}
	p.logger().Debug("audio normalized", zap.Float64("peakDB", *peak), zap.Float64("gainDB", gain))
	return out, cleanup, nil
}

// peakVolume reads the peak level of path in dBFS. It returns nil for silence.
func (p *Preprocessor) peakVolume(ctx context.Context, path string) (*float64, error) {
	_, stderr, err := runCommand(ctx, "ffmpeg", "-hide_banner", "-nostdin",
		"-i", path, "-af", "volumedetect", "-f", "null", os.DevNull)
	if err != nil {
		return nil, errors.Wrapf(err, "ffmpeg volumedetect: %s", lastLine(stderr))
	}
	return parseMaxVolume(string(stderr))
}

func parseMaxVolume(report string) (*float64, error) {
	m := maxVolumeRe.FindStringSubmatch(report)
	if m == nil {
		return nil, errors.New("ffmpeg volumedetect: no max_volume in output")
	}
	if m[1] == "-inf" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, errors.Wrap(err, "parse max_volume")
	}
	return &v, nil
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return lines[len(lines)-1]
}
