package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"snapsort/internal/analyze"
	"snapsort/internal/classify"
	"snapsort/internal/config"
	"snapsort/internal/mcp"
	"snapsort/internal/ocr"
	"snapsort/internal/store"
	"snapsort/internal/vision"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tool server on stdin/stdout",
	Long:  "Runs the tool server loop over the stdio transport. Normally spawned as a subprocess by the chat agent rather than invoked by hand.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunServer(cmd.Context())
	},
}

// RunServer loads config and runs the stdio tool server until stdin closes.
// Shared by the serve subcommand and the standalone snapsortd binary.
func RunServer(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	server, history, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}
	if history != nil {
		defer func() {
			_ = history.Close()
		}()
	}
	return server.Serve(ctx, os.Stdin, os.Stdout)
}

// buildServer assembles the analysis engine, classifier and history store
// behind a tool server.
func buildServer(cfg *config.Config, logger *slog.Logger) (*mcp.Server, *store.SQLiteStore, error) {
	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	engine := newEngine(cfg, logger)

	var history *store.SQLiteStore
	if cfg.StateDir != "" {
		if err := os.MkdirAll(cfg.StateDir, 0o755); err == nil {
			history = store.NewSQLiteStore(filepath.Join(cfg.StateDir, "history.db"))
		} else {
			logger.Warn("state dir unavailable, history disabled", "error", err)
		}
	}

	return mcp.NewServer(cfg, engine, classifier, history, logger), history, nil
}

func newClassifier(cfg *config.Config) (*classify.Classifier, error) {
	patterns, descriptions, err := config.LoadCategoryPatterns(cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}
	return classify.New(patterns, descriptions)
}

func newEngine(cfg *config.Config, logger *slog.Logger) *analyze.Engine {
	fast := ocr.NewClient(cfg.Processing.TesseractBin, cfg.Processing.OCRLanguage)
	fallback := vision.NewClient(cfg.Vision.Endpoint, cfg.Vision.APIKey, cfg.Vision.Model)
	return analyze.NewEngine(fast, fallback, cfg.Processing.OCRMinWords, logger)
}
