// Package analyze implements the tiered extraction pipeline: a fast local
// OCR pass first, a slow vision-model pass only when OCR yields too little.
package analyze

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"snapsort/internal/model"
)

// Extractor pulls text or a description out of an image file.
type Extractor interface {
	Extract(ctx context.Context, path string) (text string, confidence float64, err error)
}

type Engine struct {
	fast     Extractor
	fallback Extractor
	minWords int
	logger   *slog.Logger
}

// NewEngine wires the fast and fallback extractors. minWords is the number
// of OCR words below which the result is considered too sparse to trust.
func NewEngine(fast, fallback Extractor, minWords int, logger *slog.Logger) *Engine {
	if minWords <= 0 {
		minWords = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fast: fast, fallback: fallback, minWords: minWords, logger: logger}
}

// Analyze runs the tiered pipeline. forceFallback skips the fast pass
// entirely. A fast-pass failure degrades to the fallback instead of
// surfacing; only a fallback failure produces an unsuccessful Analysis.
// Analyze itself never returns an error through the Analysis envelope's
// callers; failures are reported inside the result.
func (e *Engine) Analyze(ctx context.Context, path string, forceFallback bool) model.Analysis {
	start := time.Now()

	if !forceFallback && e.fast != nil {
		text, _, err := e.fast.Extract(ctx, path)
		if err != nil {
			e.logger.Debug("fast extraction failed, falling back", "path", path, "error", err)
		} else {
			words := countWords(text)
			if words >= e.minWords {
				return model.Analysis{
					ExtractedText: text,
					Method:        model.MethodOCR,
					ElapsedMS:     elapsedMS(start),
					WordCount:     words,
					Success:       true,
				}
			}
			e.logger.Debug("fast extraction too sparse, falling back", "path", path, "words", words, "min_words", e.minWords)
		}
	}

	if e.fallback == nil {
		return model.Analysis{
			Method:    model.MethodVision,
			ElapsedMS: elapsedMS(start),
			Error:     "no fallback extractor configured",
		}
	}

	description, _, err := e.fallback.Extract(ctx, path)
	if err != nil {
		return model.Analysis{
			Method:    model.MethodVision,
			ElapsedMS: elapsedMS(start),
			Error:     err.Error(),
		}
	}
	return model.Analysis{
		VisionDescription: description,
		Method:            model.MethodVision,
		ElapsedMS:         elapsedMS(start),
		WordCount:         countWords(description),
		Success:           true,
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
