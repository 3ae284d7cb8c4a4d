// Package organize performs the deterministic filesystem side of sorting
// screenshots: category directories, safe renaming, collision-free moves.
package organize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"snapsort/internal/model"
)

const maxBaseNameLen = 50

var unsafeChars = regexp.MustCompile(`[^\w\s-]`)
var whitespace = regexp.MustCompile(`[\s-]+`)

// ImageExtensions are the file extensions treated as screenshot candidates.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

var meridiemSpace = regexp.MustCompile(` (AM|PM)`)

// NormalizePath resolves the narrow no-break space (U+202F) that macOS
// inserts before AM/PM in screenshot names against both spellings: a typed
// regular space finds the on-disk U+202F file, and a model-echoed U+202F
// finds a file saved with a regular space.
func NormalizePath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if alt := meridiemSpace.ReplaceAllString(path, "\u202f$1"); alt != path {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	if alt := strings.ReplaceAll(path, "\u202f", " "); alt != path {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return path
}

// EnsureCategoryDir creates baseDir/category if needed and reports whether
// the call created it. Repeated calls are no-ops.
func EnsureCategoryDir(category, baseDir string) (string, bool, error) {
	dir := filepath.Join(baseDir, category)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("resolving %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return "", false, fmt.Errorf("%s exists and is not a directory", abs)
		}
		return abs, false, nil
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s: %w", abs, err)
	}
	return abs, true, nil
}

// SafeFilename builds a filesystem-safe name from free-form text, keeping
// the category as a prefix and stamping the current date:
// "errors_login_timeout_2026-08-30.png".
func SafeFilename(originalName, category, text string) (string, string) {
	ext := strings.ToLower(filepath.Ext(originalName))

	base := strings.TrimSpace(text)
	base = unsafeChars.ReplaceAllString(base, "")
	base = whitespace.ReplaceAllString(base, "_")
	base = strings.ToLower(strings.Trim(base, "_"))
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
		base = strings.Trim(base, "_")
	}

	stamp := time.Now().Format("2006-01-02")
	if base == "" {
		return fmt.Sprintf("%s_%s%s", category, stamp, ext), ext
	}
	return fmt.Sprintf("%s_%s_%s%s", category, base, stamp, ext), ext
}

// UniquePath returns dir/name, appending _1, _2, ... before the extension
// until the path does not exist.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// MoveOrCopy relocates source into destDir under newName, resolving name
// collisions with numeric suffixes. keepOriginal selects copy over move.
// Failures are reported inside the record, never as a returned error, so a
// batch caller can keep going.
func MoveOrCopy(source, destDir, newName string, keepOriginal bool) model.OrganizeRecord {
	source = NormalizePath(source)
	op := model.OpMove
	if keepOriginal {
		op = model.OpCopy
	}
	rec := model.OrganizeRecord{OriginalPath: source, Operation: op}

	if _, err := os.Stat(source); err != nil {
		rec.Error = "source not found: " + source
		rec.ErrorCode = "SOURCE_NOT_FOUND"
		return rec
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		rec.Error = err.Error()
		rec.ErrorCode = "EXECUTION_FAILED"
		return rec
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		rec.Error = err.Error()
		rec.ErrorCode = errorCode(err)
		return rec
	}
	if newName == "" {
		newName = filepath.Base(source)
	}

	dest := UniquePath(absDir, newName)
	if keepOriginal {
		err = copyFile(source, dest)
	} else {
		err = moveFile(source, dest)
	}
	if err != nil {
		rec.Error = err.Error()
		rec.ErrorCode = errorCode(err)
		return rec
	}
	rec.NewPath = dest
	rec.Success = true
	return rec
}

func errorCode(err error) string {
	if errors.Is(err, os.ErrPermission) {
		return "PERMISSION_DENIED"
	}
	return "EXECUTION_FAILED"
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(source, dest string) error {
	if err := os.Rename(source, dest); err == nil {
		return nil
	} else if !isCrossDevice(err) {
		return err
	}
	if err := copyFile(source, dest); err != nil {
		return err
	}
	return os.Remove(source)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr)
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}
