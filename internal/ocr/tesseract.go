// Package ocr wraps the tesseract binary as the fast local text-extraction
// capability of the tiered analysis pipeline.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"snapsort/internal/model"
)

type Client struct {
	// Binary is the tesseract executable name or path.
	Binary   string
	Language string
}

func NewClient(binary, language string) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "tesseract"
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = "eng"
	}
	return &Client{Binary: binary, Language: language}
}

// Extract runs tesseract over the image at path and returns the recognized
// text. The file must exist and be readable before the subprocess is
// launched so NOT_FOUND / UNREADABLE_FILE can be distinguished from OCR
// failures.
func (c *Client) Extract(ctx context.Context, path string) (string, float64, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", 0, &model.ProviderError{Code: "OCR_INPUT_MISSING", Message: "image not found: " + path, Cause: err}
		}
		return "", 0, &model.ProviderError{Code: "OCR_INPUT_UNREADABLE", Message: "cannot stat image: " + path, Cause: err}
	}

	// "stdout" makes tesseract print the recognized text instead of
	// writing a sidecar file.
	cmd := exec.CommandContext(ctx, c.Binary, path, "stdout", "-l", c.Language)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", 0, &model.ProviderError{Code: "OCR_FAILED", Message: msg, Retryable: false, Cause: err}
	}
	// Tesseract does not report an aggregate confidence on the plain text
	// path; callers treat 0 as "unknown".
	return strings.TrimSpace(stdout.String()), 0, nil
}
