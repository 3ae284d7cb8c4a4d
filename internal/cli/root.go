// Package cli wires the snapsort commands: the chat agent, batch organize,
// the stdio tool server, and the bookkeeping subcommands around them.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"snapsort/internal/config"
)

type globalFlags struct {
	ConfigPath string
	Mode       string
	StateDir   string
	BaseFolder string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "snapsort",
	Short: "Conversational screenshot organizer",
	Long:  "snapsort analyzes screenshots with OCR and a vision model, then sorts them into category folders, either in batch or through a chat agent that drives the tools itself.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.Mode, "mode", "", "backend mode: remote (tools) or local (chat only)")
	rootCmd.PersistentFlags().StringVar(&flags.StateDir, "state-dir", "", "state directory (default: ~/.snapsort)")
	rootCmd.PersistentFlags().StringVar(&flags.BaseFolder, "base-folder", "", "destination base folder for organized screenshots")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	overrides := &config.Overrides{}
	if flags.Mode != "" {
		overrides.Mode = &flags.Mode
	}
	if flags.StateDir != "" {
		overrides.StateDir = &flags.StateDir
	}
	if flags.BaseFolder != "" {
		overrides.BaseFolder = &flags.BaseFolder
	}
	return config.Load(config.Options{
		ConfigPath: flags.ConfigPath,
		Overrides:  overrides,
	})
}

// newLogger builds the process logger. Output goes to stderr so the stdio
// transport on stdout stays clean when serving.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
