package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"snapsort/internal/cli/ui"
	"snapsort/internal/organize"
	"snapsort/internal/store"
)

var organizeFlags struct {
	Recursive     bool
	DryRun        bool
	ForceFallback bool
	Move          bool
}

var organizeCmd = &cobra.Command{
	Use:   "organize <directory>",
	Short: "Analyze and sort every screenshot in a directory",
	Long:  "Runs the full pipeline over a directory without the conversational agent: analyze each image, pick a category, and move or copy it into the base folder. Individual failures are reported and skipped; the batch always runs to completion.",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrganize,
}

func init() {
	organizeCmd.Flags().BoolVar(&organizeFlags.Recursive, "recursive", false, "descend into subdirectories")
	organizeCmd.Flags().BoolVar(&organizeFlags.DryRun, "dry-run", false, "report what would happen without touching files")
	organizeCmd.Flags().BoolVar(&organizeFlags.ForceFallback, "vision", false, "skip OCR and use the vision model for every file")
	organizeCmd.Flags().BoolVar(&organizeFlags.Move, "move", false, "move files instead of copying")
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	dir := organize.NormalizePath(args[0])
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return fmt.Errorf("directory not found: %s", dir)
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, logger)

	var history *store.SQLiteStore
	if !organizeFlags.DryRun && cfg.StateDir != "" {
		if mkErr := os.MkdirAll(cfg.StateDir, 0o755); mkErr == nil {
			history = store.NewSQLiteStore(filepath.Join(cfg.StateDir, "history.db"))
			defer func() {
				_ = history.Close()
			}()
		}
	}

	files, err := collectImages(dir, organizeFlags.Recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println(ui.Dim("no image files found in " + dir))
		return nil
	}
	fmt.Println(ui.Info("organizing", fmt.Sprintf("%d file(s) from %s", len(files), dir)))

	moved, failed := 0, 0
	for _, path := range files {
		analysis := engine.Analyze(ctx, path, organizeFlags.ForceFallback)
		if !analysis.Success {
			failed++
			fmt.Println(ui.Errorf("%s: analysis failed: %s", filepath.Base(path), analysis.Error))
			continue
		}

		text := analysis.ExtractedText
		if text == "" {
			text = analysis.VisionDescription
		}
		suggestion := classifier.Suggest(text, cfg.Organization.Categories)

		if organizeFlags.DryRun {
			fmt.Printf("%s %s %s\n",
				ui.Yellow.Render("[dry-run]"),
				filepath.Base(path),
				ui.Dim(fmt.Sprintf("-> %s (%.1f, %s)", suggestion.Category, suggestion.Confidence, analysis.Method)))
			continue
		}

		destDir, _, dirErr := organize.EnsureCategoryDir(suggestion.Category, cfg.Organization.BaseFolder)
		if dirErr != nil {
			failed++
			fmt.Println(ui.Errorf("%s: %v", filepath.Base(path), dirErr))
			continue
		}
		newName, _ := organize.SafeFilename(filepath.Base(path), suggestion.Category, text)
		keep := cfg.Organization.KeepOriginals && !organizeFlags.Move
		rec := organize.MoveOrCopy(path, destDir, newName, keep)
		if history != nil {
			if histErr := history.RecordMove(ctx, rec, suggestion.Category, analysis.Method); histErr != nil {
				logger.Warn("failed to record history", "error", histErr)
			}
		}
		if !rec.Success {
			failed++
			fmt.Println(ui.Errorf("%s: %s", filepath.Base(path), rec.Error))
			continue
		}
		moved++
		fmt.Printf("%s %s %s\n",
			ui.OK(rec.Operation+"d"),
			filepath.Base(path),
			ui.Dim("-> "+rec.NewPath))
	}

	fmt.Println(ui.Info("done", fmt.Sprintf("%d organized, %d failed", moved, failed)))
	return nil
}

func collectImages(dir string, recursive bool) ([]string, error) {
	var files []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && organize.IsImage(path) {
				files = append(files, path)
			}
			return nil
		})
		return files, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && organize.IsImage(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
