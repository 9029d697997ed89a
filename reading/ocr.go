package reading

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// lookPath is swapped by tests to fake or hide tesseract.
var lookPath = exec.LookPath

func tesseractAvailable() bool {
	_, err := lookPath("tesseract")
	return err == nil
}

func extractImage(ctx context.Context, _ *Extractor, path string) (string, error) {
	if !tesseractAvailable() {
		return "", fmt.Errorf("tesseract is not installed or not on PATH; cannot OCR %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return ocr(ctx, data, filepath.Ext(path))
}

// ocr runs tesseract over image bytes. suffix names the temp file so
// tesseract can tell the image type. Without tesseract it returns "".
func ocr(ctx context.Context, data []byte, suffix string) (string, error) {
	bin, err := lookPath("tesseract")
	if err != nil {
		return "", nil
	}

	tmp, err := os.CreateTemp("", "lawnotes-ocr-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file for OCR: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp file for OCR: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file for OCR: %w", err)
	}

	out, err := exec.CommandContext(ctx, bin, tmp.Name(), "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
