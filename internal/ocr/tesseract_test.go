package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapsort/internal/model"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	return path
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "")
	if c.Binary != "tesseract" || c.Language != "eng" {
		t.Fatalf("defaults: %+v", c)
	}
	c = NewClient(" /opt/bin/tesseract ", " deu ")
	if c.Binary != "/opt/bin/tesseract" || c.Language != "deu" {
		t.Fatalf("trimmed: %+v", c)
	}
}

func TestExtractMissingFile(t *testing.T) {
	c := NewClient("tesseract", "eng")
	_, _, err := c.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != "OCR_INPUT_MISSING" {
		t.Fatalf("err=%v want OCR_INPUT_MISSING", err)
	}
}

func TestExtractRunsBinary(t *testing.T) {
	// echo stands in for tesseract: it prints its arguments, which is
	// enough to verify the invocation shape and the stdout trimming.
	c := NewClient("/bin/echo", "eng")
	path := writeImage(t)

	text, confidence, err := c.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if confidence != 0 {
		t.Fatalf("confidence=%v want 0 (unknown)", confidence)
	}
	for _, want := range []string{path, "stdout", "-l", "eng"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output %q missing %q", text, want)
		}
	}
}

func TestExtractBinaryFailure(t *testing.T) {
	c := NewClient("/bin/false", "eng")
	_, _, err := c.Extract(context.Background(), writeImage(t))
	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != "OCR_FAILED" {
		t.Fatalf("err=%v want OCR_FAILED", err)
	}
}

func TestExtractMissingBinary(t *testing.T) {
	c := NewClient("/nonexistent/tesseract-bin", "eng")
	_, _, err := c.Extract(context.Background(), writeImage(t))
	var provErr *model.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != "OCR_FAILED" {
		t.Fatalf("err=%v want OCR_FAILED", err)
	}
}
