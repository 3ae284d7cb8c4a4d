package store

import (
	"context"
	"path/filepath"
	"testing"

	"snapsort/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordMoveAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []struct {
		rec      model.OrganizeRecord
		category string
		method   string
	}{
		{
			rec:      model.OrganizeRecord{OriginalPath: "/in/a.png", NewPath: "/out/errors/a.png", Operation: model.OpMove, Success: true},
			category: "errors",
			method:   model.MethodOCR,
		},
		{
			rec:      model.OrganizeRecord{OriginalPath: "/in/b.png", NewPath: "/out/code/b.png", Operation: model.OpCopy, Success: true},
			category: "code",
			method:   model.MethodVision,
		},
		{
			rec:      model.OrganizeRecord{OriginalPath: "/in/c.png", Operation: model.OpMove, Error: "source not found", ErrorCode: "SOURCE_NOT_FOUND"},
			category: "other",
			method:   model.MethodOCR,
		},
	}
	for _, r := range records {
		if err := s.RecordMove(ctx, r.rec, r.category, r.method); err != nil {
			t.Fatalf("RecordMove(%s): %v", r.rec.OriginalPath, err)
		}
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries)=%d want=3", len(entries))
	}
	// Most recent first.
	if entries[0].OriginalPath != "/in/c.png" || entries[0].Success {
		t.Fatalf("entries[0]=%+v want failed c.png first", entries[0])
	}
	if entries[0].Error != "source not found" {
		t.Fatalf("Error=%q want preserved message", entries[0].Error)
	}
	if entries[2].Category != "errors" || entries[2].Method != "ocr" || !entries[2].Success {
		t.Fatalf("entries[2]=%+v want errors/ocr success", entries[2])
	}
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := model.OrganizeRecord{OriginalPath: "/in/x.png", NewPath: "/out/x.png", Operation: model.OpMove, Success: true}
		if err := s.RecordMove(ctx, rec, "code", model.MethodOCR); err != nil {
			t.Fatalf("RecordMove: %v", err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries)=%d want=2", len(entries))
	}
}

func TestStatsCountsSuccessesOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	add := func(category string, success bool) {
		t.Helper()
		rec := model.OrganizeRecord{OriginalPath: "/in/x.png", Operation: model.OpMove, Success: success}
		if err := s.RecordMove(ctx, rec, category, model.MethodOCR); err != nil {
			t.Fatalf("RecordMove: %v", err)
		}
	}
	add("errors", true)
	add("errors", true)
	add("code", true)
	add("code", false)
	add("design", false)

	counts, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("len(counts)=%d want=2 (%+v)", len(counts), counts)
	}
	if counts[0].Category != "errors" || counts[0].Count != 2 {
		t.Fatalf("counts[0]=%+v want errors/2", counts[0])
	}
	if counts[1].Category != "code" || counts[1].Count != 1 {
		t.Fatalf("counts[1]=%+v want code/1", counts[1])
	}
}

func TestLazyInitAndDoubleClose(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	ctx := context.Background()

	// First use initializes without an explicit Init call.
	if err := s.RecordMove(ctx, model.OrganizeRecord{OriginalPath: "/a", Operation: model.OpMove, Success: true}, "code", "ocr"); err != nil {
		t.Fatalf("RecordMove: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
