package reading

import (
	"context"
	"testing"
)

func TestImage_NoTesseract(t *testing.T) {
	withoutTesseract(t)
	_, err := extractImage(context.Background(), nil, writeFile(t, "scan.png", whitePNG(t)))
	assertErr(t, err)
	assertContains(t, err.Error(), "tesseract")
}

func TestOCR_NoTesseractReturnsEmpty(t *testing.T) {
	withoutTesseract(t)
	text, err := ocr(context.Background(), []byte("png"), ".png")
	assertNoErr(t, err)
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestImage_FakeTesseract(t *testing.T) {
	// Echo the temp file suffix to show the extension is preserved.
	withTesseract(t, `echo "  Exam hint: ${1##*.}  "; [ "$2" = stdout ]`)
	out, err := New(1<<20, nil).Extract(context.Background(), writeFile(t, "board.jpg", whitePNG(t)))
	assertNoErr(t, err)
	if out != "Exam hint: jpg" {
		t.Errorf("got %q", out)
	}
}

func TestOCR_Failure(t *testing.T) {
	withTesseract(t, "echo bad image >&2; exit 1")
	_, err := ocr(context.Background(), []byte("png"), ".png")
	assertErr(t, err)
	assertContains(t, err.Error(), "tesseract")
}
