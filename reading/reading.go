// Package reading extracts the text of course readings so it can be sent to
// the notes generator. Office documents, PDFs, spreadsheets and HTML are
// parsed in-process; images go through tesseract when it is installed.
package reading

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ErrNoText is returned when a reading parses but carries no text, such as a
// scanned PDF without a text layer.
var ErrNoText = errors.New("no extractable text")

type extractFunc func(ctx context.Context, x *Extractor, path string) (string, error)

// formats maps a lower-case extension to its extractor.
var formats = map[string]extractFunc{
	".txt":  extractPlain,
	".md":   extractPlain,
	".html": extractHTML,
	".htm":  extractHTML,
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".xlsx": extractXLSX,
	".png":  extractImage,
	".jpg":  extractImage,
	".jpeg": extractImage,
}

// Extractor turns reading files into plain or markdown text.
type Extractor struct {
	maxBytes int64
	html     *md.Converter
	logger   *zap.Logger
}

// New returns an Extractor that rejects files larger than maxBytes.
func New(maxBytes int64, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		maxBytes: maxBytes,
		html:     md.NewConverter("", true, nil),
		logger:   logger,
	}
}

// CanExtract reports whether path has a supported format, sniffing the
// content when the extension is unknown.
func (x *Extractor) CanExtract(path string) bool {
	_, ok := x.format(path)
	return ok
}

// Extract returns the text of the reading at path.
func (x *Extractor) Extract(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	if x.maxBytes > 0 && info.Size() > x.maxBytes {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), x.maxBytes)
	}
	ext, ok := x.format(path)
	if !ok {
		return "", fmt.Errorf("unsupported format: %s", filepath.Base(path))
	}
	x.logger.Debug("extracting reading", zap.String("file", filepath.Base(path)), zap.String("format", ext))

	text, err := formats[ext](ctx, x, path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrNoText)
	}
	return text, nil
}

func (x *Extractor) format(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := formats[ext]; ok {
		return ext, true
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	sniffed := mt.Extension()
	if _, ok := formats[sniffed]; ok {
		x.logger.Debug("format sniffed from content", zap.String("file", filepath.Base(path)), zap.String("mime", mt.String()))
		return sniffed, true
	}
	return "", false
}

// Formats lists the supported extensions without the leading dot.
func Formats() []string {
	out := make([]string, 0, len(formats))
	for ext := range formats {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return out
}

// Info describes the supported formats and limits as markdown.
func (x *Extractor) Info() string {
	ocr := "not installed"
	if tesseractAvailable() {
		ocr = "available"
	}
	return fmt.Sprintf(`# Reading Extraction

## Supported Formats
- %s

## Configuration
- Max file size: %d MB
- Image OCR (tesseract): %s`,
		strings.Join(Formats(), "\n- "),
		x.maxBytes>>20,
		ocr,
	)
}

func extractPlain(_ context.Context, _ *Extractor, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

func extractHTML(_ context.Context, x *Extractor, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	out, err := x.html.ConvertString(string(data))
	if err != nil {
		x.logger.Warn("html conversion failed, keeping markup", zap.String("file", filepath.Base(path)), zap.Error(err))
		return "```html\n" + string(data) + "\n```", nil
	}
	return out, nil
}
