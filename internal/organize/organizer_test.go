package organize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "shot.png", want: true},
		{path: "SHOT.PNG", want: true},
		{path: "photo.jpeg", want: true},
		{path: "scan.tiff", want: true},
		{path: "notes.txt", want: false},
		{path: "archive.zip", want: false},
		{path: "noext", want: false},
	}
	for _, tc := range tests {
		if got := IsImage(tc.path); got != tc.want {
			t.Fatalf("IsImage(%q)=%v want=%v", tc.path, got, tc.want)
		}
	}
}

func TestNormalizePathNarrowSpace(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "Screenshot 2026-08-30 at 9.15.03 AM.png")
	writeFile(t, real, "img")

	// The model often echoes the name with a narrow no-break space before AM.
	typed := filepath.Join(dir, "Screenshot 2026-08-30 at 9.15.03\u202fAM.png")
	if got := NormalizePath(typed); got != real {
		t.Fatalf("NormalizePath=%q want=%q", got, real)
	}

	// An existing path is returned untouched even if it contains the
	// narrow space.
	narrow := filepath.Join(dir, "shot\u202fA.png")
	writeFile(t, narrow, "img")
	if got := NormalizePath(narrow); got != narrow {
		t.Fatalf("NormalizePath rewrote existing path to %q", got)
	}

	// A path that resolves neither way comes back unchanged.
	missing := filepath.Join(dir, "gone.png")
	if got := NormalizePath(missing); got != missing {
		t.Fatalf("NormalizePath=%q want=%q", got, missing)
	}
}

func TestNormalizePathResolvesNarrowSpaceOnDisk(t *testing.T) {
	dir := t.TempDir()

	// macOS writes the screenshot with U+202F before AM; the user types
	// the name with a regular space.
	onDisk := filepath.Join(dir, "Screenshot 2026-08-30 at 9.15.03\u202fAM.png")
	writeFile(t, onDisk, "img")

	typed := filepath.Join(dir, "Screenshot 2026-08-30 at 9.15.03 AM.png")
	if got := NormalizePath(typed); got != onDisk {
		t.Fatalf("NormalizePath=%q want=%q", got, onDisk)
	}

	// Only the space before AM/PM is rewritten on this direction.
	other := filepath.Join(dir, "shot\u202fA.png")
	writeFile(t, other, "img")
	spaced := filepath.Join(dir, "shot A.png")
	if got := NormalizePath(spaced); got != spaced {
		t.Fatalf("NormalizePath=%q want unchanged %q", got, spaced)
	}
}

func TestMoveOrCopyResolvesNarrowSpaceSource(t *testing.T) {
	srcDir := t.TempDir()
	base := t.TempDir()
	onDisk := filepath.Join(srcDir, "Screenshot 2026-08-30 at 2.41.07\u202fPM.png")
	writeFile(t, onDisk, "img")

	typed := filepath.Join(srcDir, "Screenshot 2026-08-30 at 2.41.07 PM.png")
	rec := MoveOrCopy(typed, base, "", true)
	if !rec.Success {
		t.Fatalf("copy failed: %s (%s)", rec.Error, rec.ErrorCode)
	}
	if _, err := os.Stat(rec.NewPath); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("original should survive a copy: %v", err)
	}
}

func TestEnsureCategoryDir(t *testing.T) {
	base := t.TempDir()

	dir, created, err := EnsureCategoryDir("errors", base)
	if err != nil {
		t.Fatalf("EnsureCategoryDir: %v", err)
	}
	if !created {
		t.Fatal("first call should report created=true")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}

	again, created, err := EnsureCategoryDir("errors", base)
	if err != nil {
		t.Fatalf("second EnsureCategoryDir: %v", err)
	}
	if created || again != dir {
		t.Fatalf("second call created=%v dir=%q want false/%q", created, again, dir)
	}
}

func TestEnsureCategoryDirFileCollision(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "errors"), "not a dir")
	if _, _, err := EnsureCategoryDir("errors", base); err == nil {
		t.Fatal("expected error when category path is a file")
	}
}

func TestSafeFilename(t *testing.T) {
	stamp := time.Now().Format("2006-01-02")

	tests := []struct {
		name     string
		original string
		category string
		text     string
		want     string
	}{
		{
			name:     "basic",
			original: "Screenshot.PNG",
			category: "errors",
			text:     "Login Timeout",
			want:     "errors_login_timeout_" + stamp + ".png",
		},
		{
			name:     "strips punctuation",
			original: "a.jpg",
			category: "code",
			text:     "func main() { panic!! }",
			want:     "code_func_main_panic_" + stamp + ".jpg",
		},
		{
			name:     "empty text",
			original: "x.png",
			category: "other",
			text:     "   ",
			want:     "other_" + stamp + ".png",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ext := SafeFilename(tc.original, tc.category, tc.text)
			if got != tc.want {
				t.Fatalf("SafeFilename=%q want=%q", got, tc.want)
			}
			if ext != strings.ToLower(filepath.Ext(tc.original)) {
				t.Fatalf("ext=%q want=%q", ext, filepath.Ext(tc.original))
			}
		})
	}
}

func TestSafeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got, _ := SafeFilename("x.png", "docs", long)
	// category prefix + truncated base + date stamp + extension
	base := strings.TrimSuffix(strings.TrimPrefix(got, "docs_"), ".png")
	base = strings.TrimSuffix(base, "_"+time.Now().Format("2006-01-02"))
	if len(base) > 50 {
		t.Fatalf("base %q is %d chars, want <= 50", base, len(base))
	}
	if strings.HasSuffix(base, "_") || strings.HasPrefix(base, "_") {
		t.Fatalf("base %q has dangling underscore", base)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	first := UniquePath(dir, "shot.png")
	if first != filepath.Join(dir, "shot.png") {
		t.Fatalf("UniquePath=%q want plain name", first)
	}

	writeFile(t, first, "a")
	second := UniquePath(dir, "shot.png")
	if second != filepath.Join(dir, "shot_1.png") {
		t.Fatalf("UniquePath=%q want shot_1.png", second)
	}

	writeFile(t, second, "b")
	third := UniquePath(dir, "shot.png")
	if third != filepath.Join(dir, "shot_2.png") {
		t.Fatalf("UniquePath=%q want shot_2.png", third)
	}
}

func TestMoveOrCopyMove(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.png")
	writeFile(t, src, "pixels")
	dest := t.TempDir()

	rec := MoveOrCopy(src, dest, "errors_login_2026-08-30.png", false)
	if !rec.Success {
		t.Fatalf("move failed: %s (%s)", rec.Error, rec.ErrorCode)
	}
	if rec.Operation != "move" {
		t.Fatalf("Operation=%q want move", rec.Operation)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be gone after move")
	}
	data, err := os.ReadFile(rec.NewPath)
	if err != nil || string(data) != "pixels" {
		t.Fatalf("dest content=%q err=%v", data, err)
	}
}

func TestMoveOrCopyKeepOriginal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.png")
	writeFile(t, src, "pixels")
	dest := t.TempDir()

	rec := MoveOrCopy(src, dest, "copy.png", true)
	if !rec.Success || rec.Operation != "copy" {
		t.Fatalf("copy failed: %+v", rec)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should survive a copy: %v", err)
	}
	if _, err := os.Stat(rec.NewPath); err != nil {
		t.Fatalf("dest missing: %v", err)
	}
}

func TestMoveOrCopyPreservesMode(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.png")
	writeFile(t, src, "pixels")
	if err := os.Chmod(src, 0o600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	dest := t.TempDir()

	rec := MoveOrCopy(src, dest, "copy.png", true)
	if !rec.Success {
		t.Fatalf("copy failed: %+v", rec)
	}
	info, err := os.Stat(rec.NewPath)
	if err != nil {
		t.Fatalf("stat dest: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("dest mode=%o want 600", got)
	}
}

func TestMoveOrCopyCollisionSuffix(t *testing.T) {
	dest := t.TempDir()
	writeFile(t, filepath.Join(dest, "shot.png"), "old")

	src := filepath.Join(t.TempDir(), "in.png")
	writeFile(t, src, "new")

	rec := MoveOrCopy(src, dest, "shot.png", false)
	if !rec.Success {
		t.Fatalf("move failed: %s", rec.Error)
	}
	if rec.NewPath != filepath.Join(dest, "shot_1.png") {
		t.Fatalf("NewPath=%q want shot_1.png", rec.NewPath)
	}
	data, _ := os.ReadFile(filepath.Join(dest, "shot.png"))
	if string(data) != "old" {
		t.Fatal("existing file was overwritten")
	}
}

func TestMoveOrCopySourceMissing(t *testing.T) {
	rec := MoveOrCopy(filepath.Join(t.TempDir(), "nope.png"), t.TempDir(), "x.png", false)
	if rec.Success {
		t.Fatal("missing source should fail")
	}
	if rec.ErrorCode != "SOURCE_NOT_FOUND" {
		t.Fatalf("ErrorCode=%q want SOURCE_NOT_FOUND", rec.ErrorCode)
	}
}

func TestMoveOrCopyDefaultsName(t *testing.T) {
	src := filepath.Join(t.TempDir(), "original.png")
	writeFile(t, src, "x")
	dest := t.TempDir()

	rec := MoveOrCopy(src, dest, "", false)
	if !rec.Success || filepath.Base(rec.NewPath) != "original.png" {
		t.Fatalf("expected original name kept, got %+v", rec)
	}
}
