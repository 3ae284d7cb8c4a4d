package analyze

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"snapsort/internal/model"
)

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, path string) (string, float64, error) {
	s.calls++
	if s.err != nil {
		return "", 0, s.err
	}
	return s.text, 1, nil
}

func TestAnalyzeFastPathAccepted(t *testing.T) {
	fast := &stubExtractor{text: "one two three four five six seven eight nine ten"}
	fallback := &stubExtractor{text: "should not run"}
	engine := NewEngine(fast, fallback, 10, slog.Default())

	got := engine.Analyze(context.Background(), "shot.png", false)
	if !got.Success || got.Method != model.MethodOCR {
		t.Fatalf("got success=%v method=%q want ocr success", got.Success, got.Method)
	}
	if got.WordCount != 10 {
		t.Fatalf("WordCount=%d want=10", got.WordCount)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback ran %d times, want 0", fallback.calls)
	}
}

func TestAnalyzeSparseTextFallsBack(t *testing.T) {
	fast := &stubExtractor{text: "just three words"}
	fallback := &stubExtractor{text: "a rich vision description of the screenshot"}
	engine := NewEngine(fast, fallback, 10, slog.Default())

	got := engine.Analyze(context.Background(), "shot.png", false)
	if !got.Success || got.Method != model.MethodVision {
		t.Fatalf("got success=%v method=%q want vision success", got.Success, got.Method)
	}
	if got.VisionDescription == "" || got.ExtractedText != "" {
		t.Fatalf("expected vision description only, got %+v", got)
	}
	if fast.calls != 1 || fallback.calls != 1 {
		t.Fatalf("calls fast=%d fallback=%d want 1/1", fast.calls, fallback.calls)
	}
}

func TestAnalyzeFastErrorFallsBack(t *testing.T) {
	fast := &stubExtractor{err: errors.New("tesseract not installed")}
	fallback := &stubExtractor{text: "vision result"}
	engine := NewEngine(fast, fallback, 10, slog.Default())

	got := engine.Analyze(context.Background(), "shot.png", false)
	if !got.Success || got.Method != model.MethodVision {
		t.Fatalf("fast error should degrade to fallback, got %+v", got)
	}
}

func TestAnalyzeForceFallbackSkipsFast(t *testing.T) {
	fast := &stubExtractor{text: "plenty of words here one two three four five six seven"}
	fallback := &stubExtractor{text: "vision result"}
	engine := NewEngine(fast, fallback, 10, slog.Default())

	got := engine.Analyze(context.Background(), "shot.png", true)
	if got.Method != model.MethodVision {
		t.Fatalf("Method=%q want vision", got.Method)
	}
	if fast.calls != 0 {
		t.Fatalf("fast ran %d times, want 0", fast.calls)
	}
}

func TestAnalyzeFallbackFailure(t *testing.T) {
	fast := &stubExtractor{text: "too few"}
	fallback := &stubExtractor{err: errors.New("VISION_UNREACHABLE: connection refused")}
	engine := NewEngine(fast, fallback, 10, slog.Default())

	got := engine.Analyze(context.Background(), "shot.png", false)
	if got.Success {
		t.Fatal("fallback failure must not report success")
	}
	if got.Error == "" || got.Method != model.MethodVision {
		t.Fatalf("got error=%q method=%q want error with vision method", got.Error, got.Method)
	}
}

func TestAnalyzeWordThresholdBoundary(t *testing.T) {
	// Exactly minWords is accepted; one fewer falls through.
	fallback := &stubExtractor{text: "vision"}
	engine := NewEngine(&stubExtractor{text: "a b c"}, fallback, 3, slog.Default())
	if got := engine.Analyze(context.Background(), "x.png", false); got.Method != model.MethodOCR {
		t.Fatalf("3 words at threshold 3: Method=%q want ocr", got.Method)
	}

	engine = NewEngine(&stubExtractor{text: "a b"}, fallback, 3, slog.Default())
	if got := engine.Analyze(context.Background(), "x.png", false); got.Method != model.MethodVision {
		t.Fatalf("2 words at threshold 3: Method=%q want vision", got.Method)
	}
}

func TestAnalyzeNoFallbackConfigured(t *testing.T) {
	engine := NewEngine(&stubExtractor{text: "short"}, nil, 10, nil)
	got := engine.Analyze(context.Background(), "x.png", false)
	if got.Success || got.Error == "" {
		t.Fatalf("missing fallback should fail, got %+v", got)
	}
}
